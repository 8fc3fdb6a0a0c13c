package console

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/joelkehle/billguard/internal/billaudit"
)

const defaultMaxResults = 200

// StoredResult is one finished analysis run held in memory. The source
// documents stay attached so follow-up chat can rebuild its context without
// the client re-uploading anything.
type StoredResult struct {
	Token         string                     `json:"token"`
	CreatedAt     time.Time                  `json:"created_at"`
	BillText      string                     `json:"-"`
	InsuranceText string                     `json:"-"`
	Result        billaudit.ResponseEnvelope `json:"result"`

	fingerprint string
}

// ResultStore caches completed runs keyed by token and by a fingerprint of
// the submitted documents. Capacity is bounded; the oldest entry goes first.
type ResultStore struct {
	mu           sync.RWMutex
	maxEntries   int
	results      map[string]*StoredResult
	fingerprints map[string]string
	order        []string
}

func NewResultStore(maxEntries int) *ResultStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxResults
	}
	return &ResultStore{
		maxEntries:   maxEntries,
		results:      make(map[string]*StoredResult),
		fingerprints: make(map[string]string),
	}
}

func generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Fingerprint identifies a (bill, insurance) document pair. The NUL
// separator keeps the boundary between the two texts unambiguous.
func Fingerprint(billText, insuranceText string) string {
	sum := sha256.Sum256([]byte(billText + "\x00" + insuranceText))
	return hex.EncodeToString(sum[:])
}

// Put stores a finished run under a fresh token and returns the entry.
// A second Put for the same document pair replaces the earlier entry.
func (s *ResultStore) Put(billText, insuranceText string, result billaudit.ResponseEnvelope) *StoredResult {
	entry := &StoredResult{
		Token:         generateToken(),
		CreatedAt:     time.Now(),
		BillText:      billText,
		InsuranceText: insuranceText,
		Result:        result,
		fingerprint:   Fingerprint(billText, insuranceText),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prior, ok := s.fingerprints[entry.fingerprint]; ok {
		s.removeLocked(prior)
	}
	s.results[entry.Token] = entry
	s.fingerprints[entry.fingerprint] = entry.Token
	s.order = append(s.order, entry.Token)
	for len(s.order) > s.maxEntries {
		s.removeLocked(s.order[0])
	}
	return entry
}

// Get returns the stored run for a token, or nil if unknown.
func (s *ResultStore) Get(token string) *StoredResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[token]
}

// Lookup returns the stored run for a document pair, or nil if none cached.
func (s *ResultStore) Lookup(billText, insuranceText string) *StoredResult {
	fp := Fingerprint(billText, insuranceText)
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.fingerprints[fp]
	if !ok {
		return nil
	}
	return s.results[token]
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

func (s *ResultStore) removeLocked(token string) {
	entry, ok := s.results[token]
	if !ok {
		return
	}
	delete(s.results, token)
	delete(s.fingerprints, entry.fingerprint)
	for i, t := range s.order {
		if t == token {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
