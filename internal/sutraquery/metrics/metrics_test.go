package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestMetrics() *QueryMetrics {
	return &QueryMetrics{startTime: time.Now()}
}

func TestGetQueryMetrics_Singleton(t *testing.T) {
	m1 := GetQueryMetrics()
	m2 := GetQueryMetrics()
	if m1 != m2 {
		t.Fatal("GetQueryMetrics 应返回同一个实例")
	}
}

func TestRecordQuery(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(true, nil)
	m.RecordQuery(false, nil)
	m.RecordQuery(false, errors.New("llm unavailable"))

	s := m.GetSnapshot()
	if s.QueriesTotal != 3 {
		t.Errorf("QueriesTotal = %d, want 3", s.QueriesTotal)
	}
	if s.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", s.CacheHits)
	}
	if s.CacheMisses != 1 {
		t.Errorf("CacheMisses = %d, want 1", s.CacheMisses)
	}
	if s.QueriesErrors != 1 {
		t.Errorf("QueriesErrors = %d, want 1", s.QueriesErrors)
	}
}

func TestCacheHitRate(t *testing.T) {
	m := newTestMetrics()

	// 无样本时命中率为 0
	if rate := m.GetSnapshot().CacheHitRate; rate != 0 {
		t.Errorf("CacheHitRate = %f, want 0", rate)
	}

	m.RecordQuery(true, nil)
	m.RecordQuery(true, nil)
	m.RecordQuery(true, nil)
	m.RecordQuery(false, nil)

	if rate := m.GetSnapshot().CacheHitRate; rate != 0.75 {
		t.Errorf("CacheHitRate = %f, want 0.75", rate)
	}
}

func TestRecordRetrieval(t *testing.T) {
	m := newTestMetrics()

	m.RecordRetrieval(120*time.Millisecond, 5, nil)
	m.RecordRetrieval(80*time.Millisecond, 0, nil)
	m.RecordRetrieval(time.Second, 0, errors.New("qdrant down"))

	s := m.GetSnapshot()
	if s.RetrievalTotal != 3 {
		t.Errorf("RetrievalTotal = %d, want 3", s.RetrievalTotal)
	}
	if s.RetrievalEmpty != 1 {
		t.Errorf("RetrievalEmpty = %d, want 1", s.RetrievalEmpty)
	}
	if s.RetrievalErrors != 1 {
		t.Errorf("RetrievalErrors = %d, want 1", s.RetrievalErrors)
	}
}

func TestRecordLLMCall(t *testing.T) {
	m := newTestMetrics()

	m.RecordLLMCall(500*time.Millisecond, 800, 300, nil)
	m.RecordLLMCall(time.Second, 0, 0, errors.New("rate limited"))
	m.RecordLLMFallback()

	s := m.GetSnapshot()
	if s.LLMCallsTotal != 2 {
		t.Errorf("LLMCallsTotal = %d, want 2", s.LLMCallsTotal)
	}
	if s.LLMCallsErrors != 1 {
		t.Errorf("LLMCallsErrors = %d, want 1", s.LLMCallsErrors)
	}
	if s.LLMFallbacks != 1 {
		t.Errorf("LLMFallbacks = %d, want 1", s.LLMFallbacks)
	}
	if s.LLMTokensPrompt != 800 || s.LLMTokensCompletion != 300 {
		t.Errorf("tokens = %d/%d, want 800/300", s.LLMTokensPrompt, s.LLMTokensCompletion)
	}
}

func TestRecordIndexing(t *testing.T) {
	m := newTestMetrics()

	m.RecordIndexing(700, 1200, nil)
	m.RecordIndexing(0, 0, errors.New("parse failure"))

	s := m.GetSnapshot()
	if s.VersesIndexed != 700 {
		t.Errorf("VersesIndexed = %d, want 700", s.VersesIndexed)
	}
	if s.ChunksIndexed != 1200 {
		t.Errorf("ChunksIndexed = %d, want 1200", s.ChunksIndexed)
	}
	if s.IndexErrors != 1 {
		t.Errorf("IndexErrors = %d, want 1", s.IndexErrors)
	}
}

func TestRecordVerseLookup(t *testing.T) {
	m := newTestMetrics()

	m.RecordVerseLookup(true)
	m.RecordVerseLookup(false)

	s := m.GetSnapshot()
	if s.VerseLookupsTotal != 2 {
		t.Errorf("VerseLookupsTotal = %d, want 2", s.VerseLookupsTotal)
	}
	if s.VerseLookupsMisses != 1 {
		t.Errorf("VerseLookupsMisses = %d, want 1", s.VerseLookupsMisses)
	}
}

func TestExport(t *testing.T) {
	m := newTestMetrics()
	m.RecordQuery(false, nil)
	m.RecordRejected()

	out := m.Export("sutraquery", "rag")

	for _, want := range []string{
		"# TYPE sutraquery_rag_queries_total counter",
		"sutraquery_rag_queries_total 1",
		"sutraquery_rag_queries_rejected_total 1",
		"# TYPE sutraquery_rag_cache_hit_rate gauge",
		"sutraquery_rag_uptime_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Export 输出缺少 %q", want)
		}
	}
}

func TestExport_NoSubsystem(t *testing.T) {
	m := newTestMetrics()

	out := m.Export("sutraquery", "")
	if !strings.Contains(out, "sutraquery_queries_total 0") {
		t.Error("无 subsystem 时前缀应只含 namespace")
	}
}
