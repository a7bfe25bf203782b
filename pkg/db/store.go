package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DBExecutor is satisfied by both *sql.DB and *sql.Tx.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// CreateOrGetWord upserts a word and returns its id. An empty definition
// keeps whatever definition is already stored.
func CreateOrGetWord(db DBExecutor, word, definition, language string) (int64, error) {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	if language == "" {
		language = "en"
	}

	var id int64
	err := db.QueryRow(`INSERT INTO words (word, language, definition, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(word, language) DO UPDATE SET
		  definition = COALESCE(NULLIF(excluded.definition, ''), words.definition),
		  updated_at = excluded.updated_at
		RETURNING id`, trimmed, language, definition, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert word: %w", err)
	}
	return id, nil
}

// CreateOrGetSource upserts a source keyed by path and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, path string, pageCount int) (int64, error) {
	if strings.TrimSpace(sourceType) == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}
	if strings.TrimSpace(path) == "" {
		return 0, fmt.Errorf("path must be non-empty")
	}

	var id int64
	err := db.QueryRow(`INSERT INTO sources (source_type, title, path, page_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
		  title = COALESCE(NULLIF(excluded.title, ''), sources.title),
		  page_count = excluded.page_count
		RETURNING id`, sourceType, title, path, pageCount).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert source: %w", err)
	}
	return id, nil
}

// LinkWordToSource records that a word was highlighted count times on the
// given pages of a source. A later run over the same source replaces the
// count and pages and keeps the first-seen time.
func LinkWordToSource(db DBExecutor, wordID, sourceID int64, pages []int, count int, seenAt time.Time) error {
	if wordID <= 0 {
		return fmt.Errorf("wordID must be positive")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	_, err := db.Exec(`INSERT INTO word_sources (word_id, source_id, occurrence_count, pages, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(word_id, source_id) DO UPDATE SET
		  occurrence_count = excluded.occurrence_count,
		  pages = excluded.pages,
		  last_seen_at = excluded.last_seen_at`,
		wordID, sourceID, count, encodePages(pages), seenAt, seenAt)
	if err != nil {
		return fmt.Errorf("link word %d to source %d: %w", wordID, sourceID, err)
	}
	return nil
}

// PruneSourceLinks removes the links of a source that were not refreshed by
// the run that saw the source at seenAt. It returns the number removed.
func PruneSourceLinks(db DBExecutor, sourceID int64, seenAt time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM word_sources WHERE source_id = ? AND last_seen_at <> ?`, sourceID, seenAt)
	if err != nil {
		return 0, fmt.Errorf("prune links of source %d: %w", sourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune links of source %d: %w", sourceID, err)
	}
	return n, nil
}

// RecordRun stores one report generation.
func RecordRun(db DBExecutor, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id must be non-empty")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := db.Exec(`INSERT INTO runs (id, source_id, output_path, word_count, not_found_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceID, run.OutputPath, run.WordCount, run.NotFoundCount, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// GetSourceByPath returns the source stored for path, or ErrNotFound.
func GetSourceByPath(db DBExecutor, path string) (Source, error) {
	var s Source
	var title sql.NullString
	err := db.QueryRow(`SELECT id, source_type, title, path, page_count, added_at FROM sources WHERE path = ?`, path).
		Scan(&s.ID, &s.SourceType, &title, &s.Path, &s.PageCount, &s.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("source %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return Source{}, err
	}
	s.Title = title.String
	return s, nil
}

// GetWordsBySource lists a source's vocabulary ordered by word.
func GetWordsBySource(db DBExecutor, sourceID int64) ([]VocabEntry, error) {
	rows, err := db.Query(`SELECT w.word, w.definition, ws.occurrence_count, ws.pages
		FROM words w JOIN word_sources ws ON ws.word_id = w.id
		WHERE ws.source_id = ?
		ORDER BY w.word`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VocabEntry
	for rows.Next() {
		var e VocabEntry
		var def sql.NullString
		var pages string
		if err := rows.Scan(&e.Word, &def, &e.OccurrenceCount, &pages); err != nil {
			return nil, err
		}
		e.Definition = def.String
		e.Pages = decodePages(pages)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRunsBySource lists a source's runs, newest first.
func GetRunsBySource(db DBExecutor, sourceID int64) ([]Run, error) {
	rows, err := db.Query(`SELECT id, source_id, output_path, word_count, not_found_count, created_at
		FROM runs WHERE source_id = ? ORDER BY created_at DESC`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SourceID, &r.OutputPath, &r.WordCount, &r.NotFoundCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func encodePages(pages []int) string {
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for i, p := range sorted {
		if i > 0 && p == sorted[i-1] {
			continue
		}
		parts = append(parts, strconv.Itoa(p))
	}
	return strings.Join(parts, ",")
}

func decodePages(s string) []int {
	if s == "" {
		return nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			pages = append(pages, n)
		}
	}
	return pages
}
