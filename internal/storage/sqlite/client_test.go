package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/feedbacklens/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.InitSchema(); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	return client
}

func insertTestFeedback(t *testing.T, c *Client, id, orgID string) {
	t.Helper()
	err := c.InsertFeedback(context.Background(), &models.FeedbackItem{
		ID:      id,
		OrgID:   orgID,
		Content: "content of " + id,
	})
	if err != nil {
		t.Fatalf("InsertFeedback(%s) error = %v", id, err)
	}
}

func testRecord(feedbackID string) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:           "an-" + feedbackID,
		FeedbackID:   feedbackID,
		OverallScore: 0.6,
		OverallLabel: models.LabelPositive,
		Confidence:   0.9,
		AspectSentiments: map[string]models.AspectSentiment{
			"support": {Score: 0.8, MentionCount: 1},
		},
		Emotions:         map[string]float64{"joy": 0.7},
		Intent:           models.Intent{Type: models.IntentCompliment, Confidence: 0.8},
		Urgency:          models.Urgency{Level: models.UrgencyLow, Indicators: []string{}},
		KeyPhrases:       []string{"great support"},
		Entities:         models.Entities{Products: []string{}, Features: []string{}, Issues: []string{}},
		AnalysisLanguage: "en",
		OriginalLanguage: "en",
		ModelUsed:        "test-model",
		ModelVersion:     "test-model",
		Metadata:         map[string]interface{}{"word_count": float64(3)},
	}
}

func TestGetFeedbackNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetFeedback(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestInsertAndGetFeedback(t *testing.T) {
	client := newTestClient(t)
	insertTestFeedback(t, client, "f1", "org-1")

	fb, err := client.GetFeedback(context.Background(), "f1")
	if err != nil {
		t.Fatalf("GetFeedback() error = %v", err)
	}
	if fb.OrgID != "org-1" || fb.Content != "content of f1" {
		t.Fatalf("feedback = %+v", fb)
	}
	if fb.AIAnalyzed {
		t.Fatal("new feedback reports analyzed")
	}
	if fb.SentimentScore != nil || fb.AIAnalysisDate != nil {
		t.Fatal("new feedback carries quick-reference analysis fields")
	}
}

func TestSaveAnalysisCreatesThenOverwrites(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	insertTestFeedback(t, client, "f1", "org-1")

	first := testRecord("f1")
	created, err := client.SaveAnalysis(ctx, first)
	if err != nil {
		t.Fatalf("first SaveAnalysis() error = %v", err)
	}
	if !created {
		t.Fatal("created = false on first save")
	}

	second := testRecord("f1")
	second.ID = "an-different"
	second.OverallScore = -0.4
	second.OverallLabel = models.LabelNegative

	created, err = client.SaveAnalysis(ctx, second)
	if err != nil {
		t.Fatalf("second SaveAnalysis() error = %v", err)
	}
	if created {
		t.Fatal("created = true on overwrite")
	}
	if second.ID != first.ID {
		t.Fatalf("overwrite id = %q, want original %q kept", second.ID, first.ID)
	}
	if second.CreatedAt.Unix() != first.CreatedAt.Unix() {
		t.Fatalf("overwrite created_at = %v, want original %v kept", second.CreatedAt, first.CreatedAt)
	}

	rec, err := client.GetAnalysisByFeedback(ctx, "f1")
	if err != nil {
		t.Fatalf("GetAnalysisByFeedback() error = %v", err)
	}
	if rec.ID != first.ID {
		t.Fatalf("stored id = %q, want %q", rec.ID, first.ID)
	}
	if rec.OverallScore != -0.4 || rec.OverallLabel != models.LabelNegative {
		t.Fatalf("stored record kept stale values: %+v", rec)
	}
}

func TestSaveAnalysisUpdatesQuickReference(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	insertTestFeedback(t, client, "f1", "org-1")

	rec := testRecord("f1")
	rec.RequiresHumanReview = true
	if _, err := client.SaveAnalysis(ctx, rec); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	fb, err := client.GetFeedback(ctx, "f1")
	if err != nil {
		t.Fatalf("GetFeedback() error = %v", err)
	}

	if !fb.AIAnalyzed {
		t.Fatal("feedback not marked analyzed")
	}
	if fb.SentimentLabel != models.LabelPositive {
		t.Fatalf("sentiment label = %q", fb.SentimentLabel)
	}
	if fb.SentimentScore == nil || *fb.SentimentScore != 0.6 {
		t.Fatalf("sentiment score = %v", fb.SentimentScore)
	}
	if !fb.RequiresHumanReview {
		t.Fatal("review flag not mirrored to feedback")
	}
	if fb.AIAnalysisDate == nil {
		t.Fatal("analysis date not set")
	}
}

func TestGetAnalysisRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	insertTestFeedback(t, client, "f1", "org-1")

	saved := testRecord("f1")
	translated := "translated body"
	saved.TranslatedContent = &translated
	if _, err := client.SaveAnalysis(ctx, saved); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	rec, err := client.GetAnalysisByFeedback(ctx, "f1")
	if err != nil {
		t.Fatalf("GetAnalysisByFeedback() error = %v", err)
	}

	if rec.AspectSentiments["support"].Score != 0.8 {
		t.Fatalf("aspects = %+v", rec.AspectSentiments)
	}
	if rec.Emotions["joy"] != 0.7 {
		t.Fatalf("emotions = %+v", rec.Emotions)
	}
	if rec.Intent.Type != models.IntentCompliment {
		t.Fatalf("intent = %+v", rec.Intent)
	}
	if len(rec.KeyPhrases) != 1 || rec.KeyPhrases[0] != "great support" {
		t.Fatalf("key phrases = %v", rec.KeyPhrases)
	}
	if rec.TranslatedContent == nil || *rec.TranslatedContent != translated {
		t.Fatalf("translated content = %v", rec.TranslatedContent)
	}
	if rec.Metadata["word_count"] != float64(3) {
		t.Fatalf("metadata = %v", rec.Metadata)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetAnalysisByFeedback(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAnalysisResetsQuickReference(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	insertTestFeedback(t, client, "f1", "org-1")

	if _, err := client.SaveAnalysis(ctx, testRecord("f1")); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	if err := client.DeleteAnalysis(ctx, "f1"); err != nil {
		t.Fatalf("DeleteAnalysis() error = %v", err)
	}

	if _, err := client.GetAnalysisByFeedback(ctx, "f1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("analysis still readable after delete: %v", err)
	}

	fb, err := client.GetFeedback(ctx, "f1")
	if err != nil {
		t.Fatalf("GetFeedback() error = %v", err)
	}
	if fb.AIAnalyzed || fb.SentimentLabel != "" || fb.SentimentScore != nil || fb.RequiresHumanReview {
		t.Fatalf("quick-reference fields not reset: %+v", fb)
	}

	if err := client.DeleteAnalysis(ctx, "f1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestSaveTranslation(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	insertTestFeedback(t, client, "f1", "org-1")

	if err := client.SaveTranslation(ctx, "f1", "translated body"); err != nil {
		t.Fatalf("SaveTranslation() error = %v", err)
	}

	fb, err := client.GetFeedback(ctx, "f1")
	if err != nil {
		t.Fatalf("GetFeedback() error = %v", err)
	}
	if fb.TranslatedContent == nil || *fb.TranslatedContent != "translated body" {
		t.Fatalf("translated content = %v", fb.TranslatedContent)
	}

	if err := client.SaveTranslation(ctx, "missing", "x"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListSentimentsByOrg(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	insertTestFeedback(t, client, "f1", "org-1")
	insertTestFeedback(t, client, "f2", "org-1")
	insertTestFeedback(t, client, "f3", "org-2")

	if _, err := client.SaveAnalysis(ctx, testRecord("f1")); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	if _, err := client.SaveAnalysis(ctx, testRecord("f3")); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	samples, err := client.ListSentimentsByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("ListSentimentsByOrg() error = %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("samples = %v, want 1 (unanalyzed and other-org rows excluded)", samples)
	}
	if samples[0].Label != models.LabelPositive {
		t.Fatalf("label = %q", samples[0].Label)
	}
	if samples[0].Score == nil || *samples[0].Score != 0.6 {
		t.Fatalf("score = %v", samples[0].Score)
	}

	count, err := client.CountFeedbackByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("CountFeedbackByOrg() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestDeleteFeedbackCascades(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	insertTestFeedback(t, client, "f1", "org-1")

	if _, err := client.SaveAnalysis(ctx, testRecord("f1")); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	if _, err := client.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = ?`, "f1"); err != nil {
		t.Fatalf("delete feedback: %v", err)
	}

	if _, err := client.GetAnalysisByFeedback(ctx, "f1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("analysis survived feedback deletion: %v", err)
	}
}
