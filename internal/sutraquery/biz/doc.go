// Package biz 提供经文问答服务的业务逻辑层。
//
// 该包采用分层架构,将业务逻辑拆分为以下组件:
//   - Indexer: 负责语料索引(解析、分块、嵌入、写入)
//   - Retriever: 负责检索(查询归一化、向量搜索、阈值过滤)
//   - Generator: 负责生成(上下文构建、LLM 回答生成)
//   - TopicGate: 负责主题判定,拦截与经文无关的提问
//   - Service: 组合以上组件,提供统一的服务接口
package biz
