package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		content TEXT NOT NULL,
		original_language TEXT NOT NULL DEFAULT '',
		translated_content TEXT,
		ai_analyzed INTEGER NOT NULL DEFAULT 0,
		ai_analysis_date INTEGER,
		sentiment_score REAL,
		sentiment_label TEXT NOT NULL DEFAULT '',
		requires_human_review INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_org ON feedback(org_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_analyzed ON feedback(ai_analyzed);
	CREATE INDEX IF NOT EXISTS idx_feedback_label ON feedback(sentiment_label);

	CREATE TABLE IF NOT EXISTS analysis_results (
		id TEXT PRIMARY KEY,
		feedback_id TEXT NOT NULL UNIQUE,
		overall_score REAL NOT NULL,
		overall_label TEXT NOT NULL,
		confidence REAL NOT NULL,
		aspect_sentiments TEXT NOT NULL,
		emotions TEXT NOT NULL,
		intent_type TEXT NOT NULL,
		intent_confidence REAL NOT NULL,
		urgency_level TEXT NOT NULL,
		urgency_indicators TEXT NOT NULL,
		key_phrases TEXT NOT NULL,
		entities TEXT NOT NULL,
		requires_human_review INTEGER NOT NULL,
		translated_content TEXT,
		analysis_language TEXT NOT NULL DEFAULT '',
		original_language TEXT NOT NULL DEFAULT '',
		model_used TEXT NOT NULL DEFAULT '',
		model_version TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (feedback_id) REFERENCES feedback(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_label ON analysis_results(overall_label);
	CREATE INDEX IF NOT EXISTS idx_analysis_review ON analysis_results(requires_human_review);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertFeedback(ctx context.Context, fb *models.FeedbackItem) error {
	query := `
		INSERT INTO feedback (id, org_id, content, original_language, translated_content,
			ai_analyzed, sentiment_label, requires_human_review, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}

	_, err := c.db.ExecContext(ctx, query,
		fb.ID,
		fb.OrgID,
		fb.Content,
		fb.OriginalLanguage,
		fb.TranslatedContent,
		boolToInt(fb.AIAnalyzed),
		fb.SentimentLabel,
		boolToInt(fb.RequiresHumanReview),
		fb.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	return nil
}

func (c *Client) GetFeedback(ctx context.Context, id string) (*models.FeedbackItem, error) {
	query := `
		SELECT id, org_id, content, original_language, translated_content, ai_analyzed,
			ai_analysis_date, sentiment_score, sentiment_label, requires_human_review, created_at
		FROM feedback WHERE id = ?
	`

	var fb models.FeedbackItem
	var analyzed, review int
	var analysisDate sql.NullInt64
	var score sql.NullFloat64
	var translated sql.NullString
	var createdAt int64

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&fb.ID,
		&fb.OrgID,
		&fb.Content,
		&fb.OriginalLanguage,
		&translated,
		&analyzed,
		&analysisDate,
		&score,
		&fb.SentimentLabel,
		&review,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feedback %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	fb.AIAnalyzed = analyzed != 0
	fb.RequiresHumanReview = review != 0
	fb.CreatedAt = time.Unix(createdAt, 0)
	if translated.Valid {
		fb.TranslatedContent = &translated.String
	}
	if analysisDate.Valid {
		t := time.Unix(analysisDate.Int64, 0)
		fb.AIAnalysisDate = &t
	}
	if score.Valid {
		fb.SentimentScore = &score.Float64
	}

	return &fb, nil
}

// SaveAnalysis upserts the analysis record for its feedback item and updates
// the feedback quick-reference fields in the same transaction. Exactly one
// record exists per feedback item; a re-analysis overwrites in place, keeping
// the original record id and created_at.
func (c *Client) SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	var existingID string
	var existingCreated int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM analysis_results WHERE feedback_id = ?`, rec.FeedbackID,
	).Scan(&existingID, &existingCreated)

	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return false, fmt.Errorf("failed to look up existing analysis: %w", err)
	}

	aspects, err := json.Marshal(rec.AspectSentiments)
	if err != nil {
		return false, fmt.Errorf("failed to encode aspect sentiments: %w", err)
	}
	emotions, _ := json.Marshal(rec.Emotions)
	indicators, _ := json.Marshal(rec.Urgency.Indicators)
	phrases, _ := json.Marshal(rec.KeyPhrases)
	entities, _ := json.Marshal(rec.Entities)
	metadata, _ := json.Marshal(rec.Metadata)

	if created {
		rec.CreatedAt = now
		rec.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO analysis_results (id, feedback_id, overall_score, overall_label, confidence,
				aspect_sentiments, emotions, intent_type, intent_confidence, urgency_level,
				urgency_indicators, key_phrases, entities, requires_human_review, translated_content,
				analysis_language, original_language, model_used, model_version, metadata,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID, rec.FeedbackID, rec.OverallScore, rec.OverallLabel, rec.Confidence,
			string(aspects), string(emotions), rec.Intent.Type, rec.Intent.Confidence, rec.Urgency.Level,
			string(indicators), string(phrases), string(entities), boolToInt(rec.RequiresHumanReview), rec.TranslatedContent,
			rec.AnalysisLanguage, rec.OriginalLanguage, rec.ModelUsed, rec.ModelVersion, string(metadata),
			now.Unix(), now.Unix(),
		)
	} else {
		rec.ID = existingID
		rec.CreatedAt = time.Unix(existingCreated, 0)
		rec.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			UPDATE analysis_results SET overall_score = ?, overall_label = ?, confidence = ?,
				aspect_sentiments = ?, emotions = ?, intent_type = ?, intent_confidence = ?,
				urgency_level = ?, urgency_indicators = ?, key_phrases = ?, entities = ?,
				requires_human_review = ?, translated_content = ?, analysis_language = ?,
				original_language = ?, model_used = ?, model_version = ?, metadata = ?, updated_at = ?
			WHERE feedback_id = ?
		`,
			rec.OverallScore, rec.OverallLabel, rec.Confidence,
			string(aspects), string(emotions), rec.Intent.Type, rec.Intent.Confidence,
			rec.Urgency.Level, string(indicators), string(phrases), string(entities),
			boolToInt(rec.RequiresHumanReview), rec.TranslatedContent, rec.AnalysisLanguage,
			rec.OriginalLanguage, rec.ModelUsed, rec.ModelVersion, string(metadata), now.Unix(),
			rec.FeedbackID,
		)
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert analysis: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE feedback SET ai_analyzed = 1, ai_analysis_date = ?, sentiment_score = ?,
			sentiment_label = ?, requires_human_review = ?
		WHERE id = ?
	`,
		now.Unix(), rec.OverallScore, rec.OverallLabel, boolToInt(rec.RequiresHumanReview), rec.FeedbackID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update feedback quick-reference fields: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit analysis: %w", err)
	}

	logger.Debug("Analysis saved",
		zap.String("feedback_id", rec.FeedbackID),
		zap.String("analysis_id", rec.ID),
		zap.Bool("created", created),
	)

	return created, nil
}

func (c *Client) GetAnalysisByFeedback(ctx context.Context, feedbackID string) (*models.AnalysisRecord, error) {
	query := `
		SELECT id, feedback_id, overall_score, overall_label, confidence, aspect_sentiments,
			emotions, intent_type, intent_confidence, urgency_level, urgency_indicators,
			key_phrases, entities, requires_human_review, translated_content, analysis_language,
			original_language, model_used, model_version, metadata, created_at, updated_at
		FROM analysis_results WHERE feedback_id = ?
	`

	var rec models.AnalysisRecord
	var aspects, emotions, indicators, phrases, entities, metadata string
	var review int
	var translated sql.NullString
	var createdAt, updatedAt int64

	err := c.db.QueryRowContext(ctx, query, feedbackID).Scan(
		&rec.ID, &rec.FeedbackID, &rec.OverallScore, &rec.OverallLabel, &rec.Confidence, &aspects,
		&emotions, &rec.Intent.Type, &rec.Intent.Confidence, &rec.Urgency.Level, &indicators,
		&phrases, &entities, &review, &translated, &rec.AnalysisLanguage,
		&rec.OriginalLanguage, &rec.ModelUsed, &rec.ModelVersion, &metadata, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis for feedback %s: %w", feedbackID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	rec.RequiresHumanReview = review != 0
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	if translated.Valid {
		rec.TranslatedContent = &translated.String
	}

	json.Unmarshal([]byte(aspects), &rec.AspectSentiments)
	json.Unmarshal([]byte(emotions), &rec.Emotions)
	json.Unmarshal([]byte(indicators), &rec.Urgency.Indicators)
	json.Unmarshal([]byte(phrases), &rec.KeyPhrases)
	json.Unmarshal([]byte(entities), &rec.Entities)
	json.Unmarshal([]byte(metadata), &rec.Metadata)

	return &rec, nil
}

// DeleteAnalysis removes a feedback item's analysis and resets the
// quick-reference fields, atomically.
func (c *Client) DeleteAnalysis(ctx context.Context, feedbackID string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM analysis_results WHERE feedback_id = ?`, feedbackID)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("analysis for feedback %s: %w", feedbackID, models.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE feedback SET ai_analyzed = 0, ai_analysis_date = NULL, sentiment_score = NULL,
			sentiment_label = '', requires_human_review = 0
		WHERE id = ?
	`, feedbackID)
	if err != nil {
		return fmt.Errorf("failed to reset feedback quick-reference fields: %w", err)
	}

	return tx.Commit()
}

// SaveTranslation stores a translated copy of the feedback content.
func (c *Client) SaveTranslation(ctx context.Context, feedbackID, translated string) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE feedback SET translated_content = ? WHERE id = ?`, translated, feedbackID,
	)
	if err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("feedback %s: %w", feedbackID, models.ErrNotFound)
	}
	return nil
}

// ListSentimentsByOrg returns the stored sentiment label and score of every
// labeled feedback item in an organization, including rows written by older
// pipelines with legacy label spellings.
func (c *Client) ListSentimentsByOrg(ctx context.Context, orgID string) ([]models.SentimentSample, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT sentiment_label, sentiment_score FROM feedback WHERE org_id = ? AND sentiment_label != ''`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentiments: %w", err)
	}
	defer rows.Close()

	var samples []models.SentimentSample
	for rows.Next() {
		var s models.SentimentSample
		var score sql.NullFloat64
		if err := rows.Scan(&s.Label, &score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if score.Valid {
			s.Score = &score.Float64
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

func (c *Client) CountFeedbackByOrg(ctx context.Context, orgID string) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback WHERE org_id = ?`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
