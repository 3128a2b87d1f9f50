// Package resultcache memoizes solve results keyed by a canonical hash of
// the puzzle's claims and public records, entirely outside the solver
// core: a cache miss or a disabled cache (MemoryMode with nothing ever
// hashing the same way twice) simply means Solve runs in full, never a
// different answer.
package resultcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Entry is one cached solve outcome.
type Entry struct {
	PuzzleHash string
	Solutions  []string
	SolvedAt   time.Time
}

type Cache struct {
	DB         *sql.DB
	MemoryMode bool
	mu         sync.RWMutex
	entries    map[string]Entry
}

func New(db *sql.DB) *Cache {
	return &Cache{DB: db}
}

func NewMemoryCache() *Cache {
	return &Cache{MemoryMode: true, entries: make(map[string]Entry)}
}

func ConnectMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// HashPuzzle derives a stable cache key from anything JSON-serializable
// that uniquely identifies a puzzle's claims and records — the API
// server passes the puzzle ID; a caller never passes the constructed
// *worldstate.Puzzle (which carries derived, non-canonical fields like
// Script ordering).
func HashPuzzle(canonical interface{}) (string, error) {
	b, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func (c *Cache) Get(ctx context.Context, puzzleHash string) (*Entry, error) {
	if c.MemoryMode {
		c.mu.RLock()
		defer c.mu.RUnlock()
		e, ok := c.entries[puzzleHash]
		if !ok {
			return nil, nil
		}
		return &e, nil
	}

	row := c.DB.QueryRowContext(ctx, `SELECT puzzle_hash, solutions_json, solved_at FROM solve_cache WHERE puzzle_hash=?`, puzzleHash)
	var e Entry
	var solutionsJSON string
	if err := row.Scan(&e.PuzzleHash, &solutionsJSON, &e.SolvedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(solutionsJSON), &e.Solutions); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Cache) Put(ctx context.Context, e Entry) error {
	if c.MemoryMode {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.entries[e.PuzzleHash] = e
		return nil
	}

	solutionsJSON, err := json.Marshal(e.Solutions)
	if err != nil {
		return err
	}
	_, err = c.DB.ExecContext(ctx,
		`INSERT INTO solve_cache (puzzle_hash, solutions_json, solved_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE solutions_json=VALUES(solutions_json), solved_at=VALUES(solved_at)`,
		e.PuzzleHash, string(solutionsJSON), e.SolvedAt)
	return err
}

func (c *Cache) Close() error {
	if c.MemoryMode {
		return nil
	}
	return c.DB.Close()
}
