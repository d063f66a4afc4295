package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/ccqa"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ ccqa.PageWriter = (*PageStore)(nil)

// StoredPage is a page row as persisted by PageStore.
type StoredPage struct {
	ID          string
	RunID       string
	ContentHash string
	CreatedAt   time.Time
	ccqa.Page
}

// PageFilter selects stored pages. Nil fields match everything.
type PageFilter struct {
	ID          *string
	URI         *string
	RunID       *string
	ContentHash *string

	Limit  int
	Offset int
}

// PageStore implements ccqa.PageWriter using SQLite.
type PageStore struct {
	db    *DB
	runID string
}

// NewPageStore creates a new PageStore. Rows written by it are tagged with
// runID.
func NewPageStore(db *DB, runID string) *PageStore {
	return &PageStore{db: db, runID: runID}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// WritePages inserts all pages in a single transaction.
func (s *PageStore) WritePages(ctx context.Context, pages []*ccqa.Page) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (id, run_id, uri, ip_address, language, mhtml, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	for _, p := range pages {
		if p == nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), s.runID, p.URI, p.IPAddress,
			p.Language, p.MHTML, hashContent(p.MHTML), createdAt); err != nil {
			return fmt.Errorf("failed to insert page %q: %w", p.URI, err)
		}
	}

	return tx.Commit()
}

// FindPageByID retrieves a stored page by ID.
func (s *PageStore) FindPageByID(ctx context.Context, id string) (*StoredPage, error) {
	pages, err := s.FindPages(ctx, PageFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ccqa.Errorf(ccqa.ENOTFOUND, "page not found")
	}
	return pages[0], nil
}

// FindPages retrieves stored pages matching the filter, oldest first.
func (s *PageStore) FindPages(ctx context.Context, filter PageFilter) ([]*StoredPage, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, run_id, uri, ip_address, language, mhtml, content_hash, created_at FROM pages WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URI != nil {
		query.WriteString(" AND uri = ?")
		args = append(args, *filter.URI)
	}
	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	paginate(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*StoredPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// CountPages returns the number of stored pages.
func (s *PageStore) CountPages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&n)
	return n, err
}

func scanPage(rows *sql.Rows) (*StoredPage, error) {
	var p StoredPage
	var createdAt string

	if err := rows.Scan(&p.ID, &p.RunID, &p.URI, &p.IPAddress, &p.Language,
		&p.MHTML, &p.ContentHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	p.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of page %s: %w", p.ID, err)
	}
	return &p, nil
}

// paginate appends LIMIT and OFFSET clauses. SQLite only accepts OFFSET
// after a LIMIT, so an offset alone uses LIMIT -1.
func paginate(query *strings.Builder, args *[]any, limit, offset int) {
	if limit <= 0 && offset <= 0 {
		return
	}
	if limit <= 0 {
		limit = -1
	}
	query.WriteString(" LIMIT ?")
	*args = append(*args, limit)
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
