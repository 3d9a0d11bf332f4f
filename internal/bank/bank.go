package bank

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"slices"
	"sort"

	"golang.org/x/mod/semver"

	"github.com/abhisek/feaquiz/internal/quizerr"
)

// SupportedMajor is the bank document major version this build understands.
const SupportedMajor = "v1"

//go:embed questions.json
var embeddedBank []byte

// document is the on-disk bank layout: a keyed collection of records.
type document struct {
	Version   string            `json:"version"`
	Questions map[string]record `json:"questions"`
}

type record struct {
	Question     string   `json:"question"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	Domain       string   `json:"domain"`
}

// Bank is a loaded, validated, read-only question bank.
type Bank struct {
	version   string
	questions []Question
	byID      map[string]int
}

// Load reads the bank at path. An empty path loads the embedded bank.
func Load(path string) (*Bank, error) {
	if path == "" {
		return Parse(embeddedBank)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &quizerr.ErrNotFound{What: "question bank", Path: path, Err: err}
		}
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	b, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse validates and decodes a bank document.
func Parse(raw []byte) (*Bank, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	if !semver.IsValid(doc.Version) {
		return nil, fmt.Errorf("invalid bank version %q", doc.Version)
	}
	if major := semver.Major(doc.Version); major != SupportedMajor {
		return nil, fmt.Errorf("unsupported bank version %s (want %s.x)", doc.Version, SupportedMajor)
	}

	ids := make([]string, 0, len(doc.Questions))
	for id := range doc.Questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	b := &Bank{
		version:   doc.Version,
		questions: make([]Question, 0, len(ids)),
		byID:      make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		r := doc.Questions[id]
		if r.CorrectIndex < 0 || r.CorrectIndex >= len(r.Choices) {
			return nil, fmt.Errorf("question %q: correct_index %d out of range for %d choices", id, r.CorrectIndex, len(r.Choices))
		}
		b.byID[id] = len(b.questions)
		b.questions = append(b.questions, Question{
			ID:            id,
			Prompt:        r.Question,
			Options:       slices.Clone(r.Choices),
			CorrectOption: r.CorrectIndex,
			Explanation:   r.Explanation,
			Domain:        ParseDomain(r.Domain),
		})
	}
	return b, nil
}

// Version returns the bank document version.
func (b *Bank) Version() string {
	return b.version
}

// Len returns the total number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Lookup returns the question with the given ID.
func (b *Bank) Lookup(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return clone(b.questions[i]), true
}

// Count returns how many questions belong to d. DomainAll counts everything.
func (b *Bank) Count(d Domain) int {
	if d.IsAll() {
		return len(b.questions)
	}
	n := 0
	for _, q := range b.questions {
		if d.Matches(q.Domain) {
			n++
		}
	}
	return n
}

// Domains returns the known domains that have at least one question, in
// display order.
func (b *Bank) Domains() []Domain {
	var out []Domain
	for _, d := range Domains {
		if b.Count(d) > 0 {
			out = append(out, d)
		}
	}
	return out
}

// Filter returns the questions of domain d in bank order. "all" returns the
// full bank. When d matches nothing, the full bank is returned with
// Fallback set; callers decide whether to surface that.
func (b *Bank) Filter(d Domain) QuestionSet {
	if d.IsAll() {
		return QuestionSet{Domain: DomainAll, Questions: b.cloneAll()}
	}

	var out []Question
	for _, q := range b.questions {
		if d.Matches(q.Domain) {
			out = append(out, clone(q))
		}
	}
	if len(out) == 0 {
		return QuestionSet{Domain: d, Questions: b.cloneAll(), Fallback: true}
	}
	return QuestionSet{Domain: ParseDomain(string(d)), Questions: out}
}

// Sample returns count random questions of domain d without replacement.
// If count exceeds the pool (or is not positive) the whole filtered pool is
// returned, shuffled. A nil rng uses the global source.
func (b *Bank) Sample(d Domain, count int, rng *rand.Rand) QuestionSet {
	set := b.Filter(d)

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(set.Questions), func(i, j int) {
		set.Questions[i], set.Questions[j] = set.Questions[j], set.Questions[i]
	})

	if count > 0 && count < len(set.Questions) {
		set.Questions = set.Questions[:count]
	}
	return set
}

func (b *Bank) cloneAll() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = clone(q)
	}
	return out
}

func clone(q Question) Question {
	q.Options = slices.Clone(q.Options)
	return q
}
