package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

const createSurveyResponsesTable = `
CREATE TABLE IF NOT EXISTS survey_responses (
	id TEXT PRIMARY KEY,
	survey_id TEXT NOT NULL,
	respondent_id TEXT NOT NULL,
	responses TEXT NOT NULL,
	submitted_at DATETIME NOT NULL,
	UNIQUE(survey_id, respondent_id),
	FOREIGN KEY(survey_id) REFERENCES surveys(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_survey_responses_respondent ON survey_responses(respondent_id);
`

type ResponseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) repository.ResponseRepository {
	return &ResponseRepository{db: db}
}

func (r *ResponseRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSurveyResponsesTable); err != nil {
		return fmt.Errorf("create survey_responses table: %w", err)
	}
	return nil
}

func (r *ResponseRepository) Submit(ctx context.Context, resp *domain.SurveyResponse, reward int64) error {
	payload, err := json.Marshal(resp.Answers)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	resp.SubmittedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE surveys
SET current_responses = current_responses + 1,
	status = CASE WHEN max_responses IS NOT NULL AND current_responses + 1 >= max_responses THEN ? ELSE status END
WHERE id = ? AND status = ? AND (max_responses IS NULL OR current_responses < max_responses)`,
		string(domain.SurveyStatusClosed),
		resp.SurveyID,
		string(domain.SurveyStatusActive),
	)
	if err != nil {
		return fmt.Errorf("update survey counter: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("survey counter rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("survey %w", repository.ErrCapacityReached)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO survey_responses (id, survey_id, respondent_id, responses, submitted_at)
VALUES (?, ?, ?, ?, ?)`,
		resp.ID,
		resp.SurveyID,
		resp.RespondentID,
		string(payload),
		resp.SubmittedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("response %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert response: %w", err)
	}

	if reward > 0 {
		if err := applyPoints(ctx, tx, resp.RespondentID, reward, domain.TransactionSurveyReward, resp.SurveyID, "Survey completion reward"); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit response: %w", err)
	}
	return nil
}

func (r *ResponseRepository) Exists(ctx context.Context, surveyID, respondentID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM survey_responses
WHERE survey_id = ? AND respondent_id = ?`, surveyID, respondentID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check response: %w", err)
	}
	return n > 0, nil
}

func (r *ResponseRepository) ListBySurvey(ctx context.Context, surveyID string) ([]domain.SurveyResponse, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, survey_id, respondent_id, responses, submitted_at
FROM survey_responses
WHERE survey_id = ?
ORDER BY submitted_at DESC, rowid DESC`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	responses := []domain.SurveyResponse{}
	for rows.Next() {
		var (
			resp    domain.SurveyResponse
			payload string
		)
		if err := rows.Scan(&resp.ID, &resp.SurveyID, &resp.RespondentID, &payload, &resp.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &resp.Answers); err != nil {
			return nil, fmt.Errorf("decode responses: %w", err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func (r *ResponseRepository) CountByRespondent(ctx context.Context, respondentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM survey_responses
WHERE respondent_id = ?`, respondentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}
