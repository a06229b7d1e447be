// Package metrics 提供经文问答服务的业务指标收集。
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// QueryMetrics 问答服务业务指标。
type QueryMetrics struct {
	// 查询指标
	queriesTotal       uint64 // 总查询次数
	queriesCacheHits   uint64 // 缓存命中次数
	queriesCacheMisses uint64 // 缓存未命中次数
	queriesRejected    uint64 // 主题外被拒绝的查询次数
	queriesErrors      uint64 // 查询错误次数

	// 检索指标
	retrievalTotal    uint64  // 总检索次数
	retrievalDuration float64 // 检索总耗时(秒)
	retrievalErrors   uint64  // 检索错误次数
	retrievalEmpty    uint64  // 无结果的检索次数

	// LLM 调用指标
	llmCallsTotal       uint64  // LLM 总调用次数
	llmCallsDuration    float64 // LLM 调用总耗时(秒)
	llmCallsErrors      uint64  // LLM 调用错误次数
	llmFallbacks        uint64  // 切换到后备供应商的次数
	llmTokensPrompt     uint64  // Prompt tokens 总数
	llmTokensCompletion uint64  // Completion tokens 总数

	// 熔断器指标
	circuitBreakerOpens uint64 // 熔断器打开次数

	// 索引指标
	versesIndexed uint64 // 已索引诗节数
	chunksIndexed uint64 // 已索引片段数
	indexErrors   uint64 // 索引错误次数

	// 诗节查询指标
	verseLookupsTotal  uint64 // 诗节精确查询次数
	verseLookupsMisses uint64 // 未命中的诗节查询次数

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	globalQueryMetrics *QueryMetrics
	queryMetricsOnce   sync.Once
)

// GetQueryMetrics 获取全局指标实例。
func GetQueryMetrics() *QueryMetrics {
	queryMetricsOnce.Do(func() {
		globalQueryMetrics = &QueryMetrics{
			startTime: time.Now(),
		}
	})
	return globalQueryMetrics
}

// RecordQuery 记录查询。
func (m *QueryMetrics) RecordQuery(cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	} else {
		atomic.AddUint64(&m.queriesCacheMisses, 1)
	}
}

// RecordRejected 记录主题外被拒绝的查询。
func (m *QueryMetrics) RecordRejected() {
	atomic.AddUint64(&m.queriesRejected, 1)
}

// RecordRetrieval 记录检索操作。
func (m *QueryMetrics) RecordRetrieval(duration time.Duration, results int, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}
	if results == 0 {
		atomic.AddUint64(&m.retrievalEmpty, 1)
	}

	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMCall 记录 LLM 调用。
func (m *QueryMetrics) RecordLLMCall(duration time.Duration, promptTokens, completionTokens int, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmCallsDuration += duration.Seconds()
	m.durationMu.Unlock()

	if promptTokens > 0 {
		atomic.AddUint64(&m.llmTokensPrompt, uint64(promptTokens))
	}
	if completionTokens > 0 {
		atomic.AddUint64(&m.llmTokensCompletion, uint64(completionTokens))
	}
}

// RecordLLMFallback 记录切换到后备供应商。
func (m *QueryMetrics) RecordLLMFallback() {
	atomic.AddUint64(&m.llmFallbacks, 1)
}

// RecordCircuitBreakerOpen 记录熔断器打开。
func (m *QueryMetrics) RecordCircuitBreakerOpen() {
	atomic.AddUint64(&m.circuitBreakerOpens, 1)
}

// RecordIndexing 记录索引操作。
func (m *QueryMetrics) RecordIndexing(verses, chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.indexErrors, 1)
		return
	}
	atomic.AddUint64(&m.versesIndexed, uint64(verses))
	atomic.AddUint64(&m.chunksIndexed, uint64(chunks))
}

// RecordVerseLookup 记录诗节精确查询。
func (m *QueryMetrics) RecordVerseLookup(found bool) {
	atomic.AddUint64(&m.verseLookupsTotal, 1)
	if !found {
		atomic.AddUint64(&m.verseLookupsMisses, 1)
	}
}

// Snapshot 指标快照,用于统计接口。
type Snapshot struct {
	QueriesTotal        uint64  `json:"queries_total"`
	CacheHits           uint64  `json:"cache_hits"`
	CacheMisses         uint64  `json:"cache_misses"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	QueriesRejected     uint64  `json:"queries_rejected"`
	QueriesErrors       uint64  `json:"queries_errors"`
	RetrievalTotal      uint64  `json:"retrieval_total"`
	RetrievalEmpty      uint64  `json:"retrieval_empty"`
	RetrievalErrors     uint64  `json:"retrieval_errors"`
	LLMCallsTotal       uint64  `json:"llm_calls_total"`
	LLMCallsErrors      uint64  `json:"llm_calls_errors"`
	LLMFallbacks        uint64  `json:"llm_fallbacks"`
	LLMTokensPrompt     uint64  `json:"llm_tokens_prompt"`
	LLMTokensCompletion uint64  `json:"llm_tokens_completion"`
	CircuitBreakerOpens uint64  `json:"circuit_breaker_opens"`
	VersesIndexed       uint64  `json:"verses_indexed"`
	ChunksIndexed       uint64  `json:"chunks_indexed"`
	IndexErrors         uint64  `json:"index_errors"`
	VerseLookupsTotal   uint64  `json:"verse_lookups_total"`
	VerseLookupsMisses  uint64  `json:"verse_lookups_misses"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
}

// GetSnapshot 返回当前指标快照。
func (m *QueryMetrics) GetSnapshot() Snapshot {
	hits := atomic.LoadUint64(&m.queriesCacheHits)
	misses := atomic.LoadUint64(&m.queriesCacheMisses)
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	return Snapshot{
		QueriesTotal:        atomic.LoadUint64(&m.queriesTotal),
		CacheHits:           hits,
		CacheMisses:         misses,
		CacheHitRate:        hitRate,
		QueriesRejected:     atomic.LoadUint64(&m.queriesRejected),
		QueriesErrors:       atomic.LoadUint64(&m.queriesErrors),
		RetrievalTotal:      atomic.LoadUint64(&m.retrievalTotal),
		RetrievalEmpty:      atomic.LoadUint64(&m.retrievalEmpty),
		RetrievalErrors:     atomic.LoadUint64(&m.retrievalErrors),
		LLMCallsTotal:       atomic.LoadUint64(&m.llmCallsTotal),
		LLMCallsErrors:      atomic.LoadUint64(&m.llmCallsErrors),
		LLMFallbacks:        atomic.LoadUint64(&m.llmFallbacks),
		LLMTokensPrompt:     atomic.LoadUint64(&m.llmTokensPrompt),
		LLMTokensCompletion: atomic.LoadUint64(&m.llmTokensCompletion),
		CircuitBreakerOpens: atomic.LoadUint64(&m.circuitBreakerOpens),
		VersesIndexed:       atomic.LoadUint64(&m.versesIndexed),
		ChunksIndexed:       atomic.LoadUint64(&m.chunksIndexed),
		IndexErrors:         atomic.LoadUint64(&m.indexErrors),
		VerseLookupsTotal:   atomic.LoadUint64(&m.verseLookupsTotal),
		VerseLookupsMisses:  atomic.LoadUint64(&m.verseLookupsMisses),
		UptimeSeconds:       time.Since(m.startTime).Seconds(),
	}
}

// Export 导出 Prometheus 文本格式指标。
func (m *QueryMetrics) Export(namespace, subsystem string) string {
	s := m.GetSnapshot()
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	var sb strings.Builder
	counter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}
	gauge := func(name, help string, value float64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s gauge\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %.6f\n\n", prefix, name, value))
	}

	counter("queries_total", "Total number of queries.", s.QueriesTotal)
	counter("queries_cache_hits_total", "Number of cache hits.", s.CacheHits)
	counter("queries_cache_misses_total", "Number of cache misses.", s.CacheMisses)
	counter("queries_rejected_total", "Number of off-topic queries rejected.", s.QueriesRejected)
	counter("queries_errors_total", "Number of query errors.", s.QueriesErrors)
	gauge("cache_hit_rate", "Cache hit rate (0-1).", s.CacheHitRate)

	counter("retrieval_total", "Total number of retrievals.", s.RetrievalTotal)
	counter("retrieval_empty_total", "Number of retrievals with no results.", s.RetrievalEmpty)
	counter("retrieval_errors_total", "Number of retrieval errors.", s.RetrievalErrors)

	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()
	gauge("retrieval_duration_seconds_total", "Total retrieval duration.", retrievalDuration)

	counter("llm_calls_total", "Total number of LLM calls.", s.LLMCallsTotal)
	counter("llm_calls_errors_total", "Number of LLM call errors.", s.LLMCallsErrors)
	counter("llm_fallbacks_total", "Number of fallbacks to backup providers.", s.LLMFallbacks)
	counter("llm_tokens_prompt_total", "Total prompt tokens.", s.LLMTokensPrompt)
	counter("llm_tokens_completion_total", "Total completion tokens.", s.LLMTokensCompletion)
	gauge("llm_calls_duration_seconds_total", "Total LLM call duration.", llmDuration)

	counter("circuit_breaker_opens_total", "Number of circuit breaker opens.", s.CircuitBreakerOpens)

	counter("verses_indexed_total", "Number of verses indexed.", s.VersesIndexed)
	counter("chunks_indexed_total", "Number of chunks indexed.", s.ChunksIndexed)
	counter("index_errors_total", "Number of indexing errors.", s.IndexErrors)

	counter("verse_lookups_total", "Number of exact verse lookups.", s.VerseLookupsTotal)
	counter("verse_lookups_misses_total", "Number of verse lookups with no match.", s.VerseLookupsMisses)

	gauge("uptime_seconds", "Service uptime in seconds.", s.UptimeSeconds)
	return sb.String()
}
