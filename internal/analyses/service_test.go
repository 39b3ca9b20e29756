package analyses

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/audit"
	"resume-matcher/internal/documents"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/matching"
	"resume-matcher/internal/profile"
	"resume-matcher/internal/shared/storage/object/local"
)

const (
	seniorPythonCV = "Ana Silva\nSenior Python developer with 4 years of experience in Django."
	juniorJavaCV   = "Bruno Costa\nJunior Java developer with 1 year of experience."
)

type fixture struct {
	svc       *Service
	docs      *documents.Service
	docRepo   *documents.MemoryRepo
	repo      *MemoryRepo
	auditRepo *audit.MemoryRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := local.New(t.TempDir())
	docRepo := documents.NewMemoryRepo()
	repo := NewMemoryRepo()
	auditRepo := audit.NewMemoryRepo()
	return fixture{
		svc: &Service{
			Repo:        repo,
			DocRepo:     docRepo,
			Store:       store,
			Builder:     profile.NewBuilder(nil),
			Engine:      matching.NewEngine(nil),
			Audit:       &audit.Service{Repo: auditRepo},
			Concurrency: 2,
		},
		docs:      &documents.Service{Store: store, Repo: docRepo},
		docRepo:   docRepo,
		repo:      repo,
		auditRepo: auditRepo,
	}
}

func (f fixture) upload(t *testing.T, name, text string) documents.Document {
	t.Helper()
	doc, err := f.docs.Upload(context.Background(), name, strings.NewReader(text))
	require.NoError(t, err)
	return doc
}

func (f fixture) audits(t *testing.T, action audit.Action) []audit.Record {
	t.Helper()
	all, err := f.auditRepo.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	var out []audit.Record
	for _, rec := range all {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

func TestAnalyzeDocumentCreatesThenReuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.upload(t, "ana.txt", seniorPythonCV)

	first, reused, err := f.svc.AnalyzeDocument(ctx, doc.ID, false)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, doc.ID, first.DocumentID)
	assert.Equal(t, []string{"Python", "Django"}, first.Skills)
	assert.Equal(t, "4 years", first.ExperienceYears)
	assert.Equal(t, "Senior", first.PositionLevel)

	stored, err := f.docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	assert.Equal(t, extract.ExtractedKey(doc.StorageKey), stored.ExtractedTextKey)

	second, reused, err := f.svc.AnalyzeDocument(ctx, doc.ID, false)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, first.ID, second.ID)

	forced, reused, err := f.svc.AnalyzeDocument(ctx, doc.ID, true)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.NotEqual(t, first.ID, forced.ID)
	assert.Equal(t, first.Skills, forced.Skills)

	kept, err := f.repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, kept)

	successes := f.audits(t, audit.ActionDocumentAnalysis)
	require.Len(t, successes, 2)
	for _, rec := range successes {
		assert.True(t, rec.Success)
		assert.Equal(t, doc.ID, rec.DocumentID)
	}
}

func TestAnalyzeDocumentFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.docRepo.Create(ctx, documents.Document{
		ID:         "scan",
		FileName:   "scan.png",
		FileType:   extract.TypePNG,
		StorageKey: "scan/scan.png",
		CreatedAt:  time.Now(),
	}))

	_, _, err := f.svc.AnalyzeDocument(ctx, "scan", false)
	require.ErrorIs(t, err, extract.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "png")

	doc, err := f.docRepo.GetByID(ctx, "scan")
	require.NoError(t, err)
	assert.False(t, doc.Processed)
	assert.NotEmpty(t, doc.ErrorMessage)

	records := f.audits(t, audit.ActionDocumentAnalysis)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	assert.Equal(t, "scan", records[0].DocumentID)
}

func TestAnalyzeDocumentMissing(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.AnalyzeDocument(context.Background(), "nope", false)
	require.ErrorIs(t, err, documents.ErrNotFound)

	_, _, err = f.svc.AnalyzeDocument(context.Background(), "  ", false)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeDocumentEmptyText(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, "blank.txt", "   \n  ")

	a, _, err := f.svc.AnalyzeDocument(context.Background(), doc.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Could not extract text from blank.txt", a.Summary)
	assert.Empty(t, a.Skills)
}

// gatedDocRepo holds the first lookup until released and records whether
// its context had ended by then.
type gatedDocRepo struct {
	documents.DocumentsRepo
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	ctxErr  error
}

func (r *gatedDocRepo) GetByID(ctx context.Context, documentID string) (documents.Document, error) {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
		r.ctxErr = ctx.Err()
	})
	return r.DocumentsRepo.GetByID(ctx, documentID)
}

func TestAnalyzeDocumentOutlivesFirstCallerCancel(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, "ana.txt", seniorPythonCV)
	gate := &gatedDocRepo{DocumentsRepo: f.docRepo, entered: make(chan struct{}), release: make(chan struct{})}
	f.svc.DocRepo = gate

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := f.svc.AnalyzeDocument(ctx, doc.ID, false)
		firstErr <- err
	}()
	<-gate.entered
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		a   Analysis
		err error
	}
	second := make(chan result, 1)
	go func() {
		a, _, err := f.svc.AnalyzeDocument(context.Background(), doc.ID, false)
		second <- result{a, err}
	}()
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, doc.ID, got.a.DocumentID)
	assert.NoError(t, gate.ctxErr)

	all, err := f.repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAnalyzeBatchKeepsOrderAndIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	a := f.upload(t, "ana.txt", seniorPythonCV)
	b := f.upload(t, "bruno.txt", juniorJavaCV)

	items := f.svc.AnalyzeBatch(context.Background(), []string{b.ID, "missing", a.ID}, false)
	require.Len(t, items, 3)
	assert.Equal(t, b.ID, items[0].DocumentID)
	assert.True(t, items[0].OK())
	assert.Equal(t, "missing", items[1].DocumentID)
	assert.ErrorIs(t, items[1].Err, documents.ErrNotFound)
	assert.Equal(t, a.ID, items[2].DocumentID)
	assert.True(t, items[2].OK())
}

func TestAnalyzeBatchDuplicateIDsShareOneAnalysis(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, "ana.txt", seniorPythonCV)

	items := f.svc.AnalyzeBatch(context.Background(), []string{doc.ID, doc.ID, doc.ID}, false)
	for _, item := range items {
		require.NoError(t, item.Err)
		assert.Equal(t, items[0].Analysis.ID, item.Analysis.ID)
	}
	all, err := f.repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMatchQueryRanksBestFirst(t *testing.T) {
	f := newFixture(t)
	a := f.upload(t, "ana.txt", seniorPythonCV)
	b := f.upload(t, "bruno.txt", juniorJavaCV)

	ranking, err := f.svc.MatchQuery(context.Background(), "Python senior 3 anos", []string{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, ranking.Matches, 2)
	assert.Equal(t, a.ID, ranking.Matches[0].DocumentID)
	assert.Equal(t, b.ID, ranking.Matches[1].DocumentID)
	assert.Greater(t, ranking.Matches[0].Score, ranking.Matches[1].Score)
	assert.Contains(t, ranking.Reasoning, "Python senior 3 anos")

	records := f.audits(t, audit.ActionQueryMatch)
	require.Len(t, records, 1)
	assert.True(t, records[0].Success)
	assert.Equal(t, a.ID, records[0].Metadata["topDocumentId"])
}

func TestMatchQueryDefaultsToAllDocuments(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "ana.txt", seniorPythonCV)
	f.upload(t, "bruno.txt", juniorJavaCV)

	ranking, err := f.svc.MatchQuery(context.Background(), "java", nil)
	require.NoError(t, err)
	assert.Len(t, ranking.Matches, 2)
}

func TestMatchQueryWithoutProfiles(t *testing.T) {
	f := newFixture(t)
	ranking, err := f.svc.MatchQuery(context.Background(), "python", []string{"missing"})
	require.NoError(t, err)
	assert.Empty(t, ranking.Matches)
	assert.Equal(t, "No profiles processed for analysis.", ranking.Reasoning)
}

func TestMatchQueryRequiresQuery(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MatchQuery(context.Background(), "   ", nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

type memCache struct {
	mu   sync.Mutex
	data map[string]matching.Ranking
	sets int
}

func (c *memCache) Get(_ context.Context, key string) (matching.Ranking, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[key]
	return r, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, r matching.Ranking, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = r
	c.sets++
	return nil
}

func TestMatchQueryUsesCache(t *testing.T) {
	f := newFixture(t)
	cache := &memCache{data: map[string]matching.Ranking{}}
	f.svc.Cache = cache
	doc := f.upload(t, "ana.txt", seniorPythonCV)

	first, err := f.svc.MatchQuery(context.Background(), "python", []string{doc.ID})
	require.NoError(t, err)
	second, err := f.svc.MatchQuery(context.Background(), "python", []string{doc.ID})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Len(t, f.audits(t, audit.ActionQueryMatch), 1)
}

func TestMatchQuerySurvivesUnreachableRedis(t *testing.T) {
	f := newFixture(t)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	f.svc.Cache = NewRedisCache(client)
	doc := f.upload(t, "ana.txt", seniorPythonCV)

	ranking, err := f.svc.MatchQuery(context.Background(), "python", []string{doc.ID})
	require.NoError(t, err)
	assert.Len(t, ranking.Matches, 1)
}

func TestQueryCacheKeyDependsOnOrder(t *testing.T) {
	k1 := QueryCacheKey("python", []string{"a", "b"})
	k2 := QueryCacheKey("python", []string{"b", "a"})
	k3 := QueryCacheKey("python", []string{"a", "b"})
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, k3)
	assert.True(t, strings.HasPrefix(k1, queryCachePrefix))
}

func TestListValidatesBounds(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.List(context.Background(), 10, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDocumentLookup(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, "ana.txt", seniorPythonCV)
	lookup := DocumentLookup{Repo: f.repo}

	_, ok, err := lookup.LatestForDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	created, _, err := f.svc.AnalyzeDocument(context.Background(), doc.ID, false)
	require.NoError(t, err)
	got, ok, err := lookup.LatestForDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, created, got)
}
