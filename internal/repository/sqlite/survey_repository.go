package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
)

const createSurveyTables = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS surveys (
	id TEXT PRIMARY KEY,
	creator_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	search_text TEXT NOT NULL DEFAULT '',
	category_id INTEGER NULL,
	reward_points INTEGER NOT NULL DEFAULT 0,
	total_budget INTEGER NOT NULL DEFAULT 0,
	max_responses INTEGER NULL,
	current_responses INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	is_data_for_sale INTEGER NOT NULL DEFAULT 0,
	data_price INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(category_id) REFERENCES categories(id)
);
CREATE INDEX IF NOT EXISTS idx_surveys_status ON surveys(status, created_at);
CREATE INDEX IF NOT EXISTS idx_surveys_creator ON surveys(creator_id);
CREATE TABLE IF NOT EXISTS survey_questions (
	id TEXT PRIMARY KEY,
	survey_id TEXT NOT NULL,
	question_text TEXT NOT NULL,
	question_type TEXT NOT NULL,
	options TEXT NOT NULL DEFAULT '[]',
	is_required INTEGER NOT NULL DEFAULT 0,
	order_index INTEGER NOT NULL,
	FOREIGN KEY(survey_id) REFERENCES surveys(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_survey_questions_survey_id ON survey_questions(survey_id, order_index);
`

var defaultCategories = []domain.Category{
	{Name: "General", Slug: "general", Description: "Surveys without a specific topic"},
	{Name: "Education", Slug: "education", Description: "Courses, campus life and learning"},
	{Name: "Lifestyle", Slug: "lifestyle", Description: "Habits, food, travel and leisure"},
	{Name: "Technology", Slug: "technology", Description: "Devices, apps and the internet"},
	{Name: "Health", Slug: "health", Description: "Fitness, sleep and wellbeing"},
	{Name: "Career", Slug: "career", Description: "Jobs, internships and skills"},
}

type SurveyRepository struct {
	db *sql.DB
}

func NewSurveyRepository(db *sql.DB) repository.SurveyRepository {
	return &SurveyRepository{db: db}
}

func (r *SurveyRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSurveyTables); err != nil {
		return fmt.Errorf("create survey tables: %w", err)
	}
	for _, c := range defaultCategories {
		if _, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO categories (name, slug, description)
VALUES (?, ?, ?)`, c.Name, c.Slug, c.Description); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
	}
	return nil
}

func (r *SurveyRepository) Create(ctx context.Context, survey *domain.Survey) error {
	survey.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	if _, err := tx.ExecContext(ctx, `
INSERT INTO surveys (id, creator_id, title, description, search_text, category_id, reward_points, total_budget, max_responses, current_responses, status, is_data_for_sale, data_price, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		survey.ID,
		survey.CreatorID,
		survey.Title,
		survey.Description,
		searchText(survey),
		nullInt64(survey.CategoryID),
		survey.RewardPoints,
		survey.TotalBudget,
		nullInt(survey.MaxResponses),
		survey.CurrentResponses,
		string(survey.Status),
		survey.IsDataForSale,
		survey.DataPrice,
		survey.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}

	for _, q := range survey.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode question options: %w", err)
		}
		if q.Options == nil {
			options = []byte("[]")
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO survey_questions (id, survey_id, question_text, question_type, options, is_required, order_index)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			q.ID,
			survey.ID,
			q.Text,
			string(q.Type),
			string(options),
			q.IsRequired,
			q.OrderIndex,
		); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit survey create: %w", err)
	}
	return nil
}

const surveyColumns = `id, creator_id, title, description, category_id, reward_points, total_budget, max_responses, current_responses, status, is_data_for_sale, data_price, created_at`

func (r *SurveyRepository) Get(ctx context.Context, id string) (*domain.Survey, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+surveyColumns+`
FROM surveys
WHERE id = ?`, id)
	survey, err := scanSurvey(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, survey_id, question_text, question_type, options, is_required, order_index
FROM survey_questions
WHERE survey_id = ?
ORDER BY order_index ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q       domain.Question
			qType   string
			options string
		)
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.Text, &qType, &options, &q.IsRequired, &q.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qType)
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("decode question options: %w", err)
		}
		survey.Questions = append(survey.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return survey, nil
}

func (r *SurveyRepository) List(ctx context.Context, filter repository.SurveyFilter) ([]domain.Survey, error) {
	clauses := []string{"status = ?"}
	args := []any{string(domain.SurveyStatusActive)}

	if filter.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		clauses = append(clauses, `search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
	}
	args = append(args, filter.Limit, filter.Skip)

	query := fmt.Sprintf(`
SELECT %s
FROM surveys
WHERE %s
ORDER BY created_at DESC, id ASC
LIMIT ? OFFSET ?`, surveyColumns, strings.Join(clauses, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query surveys: %w", err)
	}
	defer rows.Close()

	surveys := []domain.Survey{}
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, *survey)
	}
	return surveys, rows.Err()
}

func (r *SurveyRepository) CountByCreator(ctx context.Context, creatorID string) (int, int, error) {
	var surveys, responses int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1), COALESCE(SUM(current_responses), 0)
FROM surveys
WHERE creator_id = ?`, creatorID).Scan(&surveys, &responses)
	if err != nil {
		return 0, 0, fmt.Errorf("count surveys: %w", err)
	}
	return surveys, responses, nil
}

func (r *SurveyRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, slug, description
FROM categories
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SurveyRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM categories WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return n > 0, nil
}

func scanSurvey(scanner interface {
	Scan(dest ...any) error
}) (*domain.Survey, error) {
	var (
		survey       domain.Survey
		categoryID   sql.NullInt64
		maxResponses sql.NullInt64
		status       string
	)
	if err := scanner.Scan(
		&survey.ID,
		&survey.CreatorID,
		&survey.Title,
		&survey.Description,
		&categoryID,
		&survey.RewardPoints,
		&survey.TotalBudget,
		&maxResponses,
		&survey.CurrentResponses,
		&status,
		&survey.IsDataForSale,
		&survey.DataPrice,
		&survey.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("survey %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan survey: %w", err)
	}
	survey.Status = domain.SurveyStatus(status)
	if categoryID.Valid {
		v := categoryID.Int64
		survey.CategoryID = &v
	}
	if maxResponses.Valid {
		v := int(maxResponses.Int64)
		survey.MaxResponses = &v
	}
	return &survey, nil
}

// searchText is matched by List. SQLite's LOWER only folds ASCII, so the
// folding happens here.
func searchText(survey *domain.Survey) string {
	return strings.ToLower(survey.Title) + "\n" + strings.ToLower(survey.Description)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
