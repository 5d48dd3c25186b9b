package qhamming

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/theapemachine/errnie"
)

/*
CodeCache persists derived code definitions and codeword sets, keyed by the
generator matrix, so repeated runs with the same H skip the reduction and
the codeword enumeration. An empty directory gives an in-memory cache.
*/
type CodeCache struct {
	db *badger.DB
}

type cachedCode struct {
	H           [][]uint8 `json:"h"`
	HStd        [][]uint8 `json:"h_std"`
	Rank        int       `json:"rank"`
	Pivots      []int     `json:"pivots"`
	RowSwaps    []Swap    `json:"row_swaps"`
	ColumnSwaps []Swap    `json:"column_swaps"`
	Permutation []int     `json:"permutation"`
	Codewords   []string  `json:"codewords"`
}

func OpenCodeCache(dir string) (*CodeCache, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open code cache: %w", err)
	}

	return &CodeCache{db: db}, nil
}

func (cache *CodeCache) Close() error {
	return cache.db.Close()
}

func cacheKey(h *Matrix) []byte {
	return []byte(fmt.Sprintf("code/%dx%d/%s", h.Rows(), h.Cols(), hex.EncodeToString([]byte(h.String()))))
}

func matrixRows(m *Matrix) [][]uint8 {
	rows := make([][]uint8, m.Rows())
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}

func (cache *CodeCache) Store(code *Code, codewords *CodewordSet) error {
	entry := cachedCode{
		H:           matrixRows(code.H),
		HStd:        matrixRows(code.HStd),
		Rank:        code.Reduction.Rank,
		Pivots:      code.Reduction.Pivots,
		RowSwaps:    code.Reduction.RowSwaps,
		ColumnSwaps: code.Reduction.ColumnSwaps,
		Permutation: code.Reduction.Permutation,
	}
	for _, w := range codewords.Words() {
		entry.Codewords = append(entry.Codewords, w.String())
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached code: %w", err)
	}

	return cache.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(code.H), raw)
	})
}

/*
Load returns the cached definition for h. The stored H is re-validated
through DefineCode and must reproduce the stored standard form, and the
stored codewords must match the set derived from it, so a stale or corrupt
entry is reported instead of trusted.
*/
func (cache *CodeCache) Load(h *Matrix) (*Code, *CodewordSet, bool, error) {
	var raw []byte
	err := cache.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(h))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("read cached code: %w", err)
	}

	var entry cachedCode
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, nil, false, fmt.Errorf("decode cached code: %w", err)
	}

	stored, err := MatrixFromRows(entry.H)
	if err != nil {
		return nil, nil, false, err
	}
	code, err := DefineCode(stored)
	if err != nil {
		return nil, nil, false, err
	}

	std, err := MatrixFromRows(entry.HStd)
	if err != nil {
		return nil, nil, false, err
	}
	if !std.Equal(code.HStd) || !stored.Equal(h) {
		return nil, nil, false, fmt.Errorf("cached standard form is stale: %w", ErrInvalidCode)
	}

	_, derived, err := BuildEncoder(code)
	if err != nil {
		return nil, nil, false, err
	}
	if err := checkCachedWords(entry.Codewords, derived); err != nil {
		return nil, nil, false, err
	}

	errnie.Info("CodeCache - loaded %s with %d codewords", code, derived.Len())
	return code, derived, true, nil
}

// checkCachedWords requires the stored strings to be exactly the derived codeword set.
func checkCachedWords(stored []string, derived *CodewordSet) error {
	if len(stored) != derived.Len() {
		return fmt.Errorf("cached %d codewords, code has %d: %w", len(stored), derived.Len(), ErrInvalidCode)
	}

	seen := make(map[string]bool, len(stored))
	for _, s := range stored {
		w := NewBitVector(len(s))
		for i := range s {
			if s[i] != '0' && s[i] != '1' {
				return fmt.Errorf("cached codeword %q is not a bit string: %w", s, ErrInvalidCode)
			}
			w[i] = s[i] - '0'
		}
		if seen[s] || !derived.Contains(w) {
			return fmt.Errorf("cached codeword %s does not belong to the code: %w", s, ErrInvalidCode)
		}
		seen[s] = true
	}
	return nil
}

// LoadOrDefine returns the cached code for h, defining and storing it on a miss.
func (cache *CodeCache) LoadOrDefine(h *Matrix) (*Code, *CodewordSet, error) {
	code, codewords, ok, err := cache.Load(h)
	if err != nil || ok {
		return code, codewords, err
	}

	if code, err = DefineCode(h); err != nil {
		return nil, nil, err
	}
	if _, codewords, err = BuildEncoder(code); err != nil {
		return nil, nil, err
	}
	if err := cache.Store(code, codewords); err != nil {
		return nil, nil, err
	}

	return code, codewords, nil
}
