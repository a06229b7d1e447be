package errors

import "google.golang.org/grpc/codes"

// 经文问答服务代码: 20 (业务服务范围 20-79)
// 错误码格式: AABBCCC
// - AA: 20 (问答服务)
// - BB: 类别代码
// - CCC: 序号

const (
	// ServiceRAG is for the scripture QA service.
	ServiceRAG = 20
)

var (
	// 请求参数错误 (类别 01)
	ErrRAGInvalidRequest = Register(New(MakeCode(ServiceRAG, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid request parameters", "请求参数无效"))

	// 查询相关错误
	ErrRAGQueryTimeout  = Register(New(MakeCode(ServiceRAG, CategoryTimeout, 1), 408, codes.DeadlineExceeded, "Query timeout", "查询超时"))
	ErrRAGQueryFailed   = Register(New(MakeCode(ServiceRAG, CategoryInternal, 1), 500, codes.Internal, "Query failed", "查询失败"))
	ErrRAGVerseNotFound = Register(New(MakeCode(ServiceRAG, CategoryResource, 1), 404, codes.NotFound, "Verse not found", "诗节不存在"))

	// 索引与统计错误
	ErrRAGIndexFailed      = Register(New(MakeCode(ServiceRAG, CategoryInternal, 2), 500, codes.Internal, "Corpus indexing failed", "语料索引失败"))
	ErrRAGStatsUnavailable = Register(New(MakeCode(ServiceRAG, CategoryInternal, 3), 500, codes.Internal, "Statistics unavailable", "统计信息不可用"))
)
