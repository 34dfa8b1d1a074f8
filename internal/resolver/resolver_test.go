package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprintslab/pawtrail/internal/common"
)

type fakeGenerator struct {
	outputs []string
	prompts []string
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	out := g.outputs[0]
	if len(g.outputs) > 1 {
		g.outputs = g.outputs[1:]
	}
	return out, nil
}

type fakeSearcher struct {
	snippets []string
	calls    int
	err      error
}

func (s *fakeSearcher) Search(ctx context.Context, query string, k int) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snippets, nil
}

const narrative = "Invoice Summary:\n- Total number of invoices: 2\n"

func TestResolveStructuredAnswer(t *testing.T) {
	gen := &fakeGenerator{outputs: []string{"  Two invoices in total.  "}}
	search := &fakeSearcher{snippets: []string{"unused"}}

	r, err := New(narrative, search, gen, Config{}, nil)
	require.NoError(t, err)

	answer, err := r.Resolve(context.Background(), "How many invoices are there?")
	require.NoError(t, err)

	assert.Equal(t, "Two invoices in total.", answer.Text)
	assert.Equal(t, TierStructured, answer.Tier)
	assert.Zero(t, search.calls)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], narrative)
	assert.Contains(t, gen.prompts[0], DefaultInsufficiencyMarker)
}

func TestResolveFallsBackOnMarker(t *testing.T) {
	gen := &fakeGenerator{outputs: []string{
		DefaultInsufficiencyMarker,
		"He attended on 01/01/2024.",
	}}
	search := &fakeSearcher{snippets: []string{"snippet a", "snippet b"}}

	r, err := New(narrative, search, gen, Config{TopK: 2}, nil)
	require.NoError(t, err)

	answer, err := r.Resolve(context.Background(), "Which exact dates did Snoopy attend?")
	require.NoError(t, err)

	assert.Equal(t, "He attended on 01/01/2024.", answer.Text)
	assert.Equal(t, TierFallback, answer.Tier)
	assert.Equal(t, 1, search.calls)
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "snippet a")
	assert.NotContains(t, gen.prompts[1], narrative)
}

func TestResolveMarkerInsideLongerOutput(t *testing.T) {
	// Substring match, not equality: a marker wrapped in prose still
	// triggers the fallback.
	gen := &fakeGenerator{outputs: []string{
		"I'm afraid " + DefaultInsufficiencyMarker + " applies here.",
		"fallback answer",
	}}
	search := &fakeSearcher{snippets: []string{"s"}}

	r, err := New(narrative, search, gen, Config{}, nil)
	require.NoError(t, err)

	answer, err := r.Resolve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, TierFallback, answer.Tier)
	assert.Equal(t, "fallback answer", answer.Text)
}

func TestResolveNoSecondFallback(t *testing.T) {
	// The fallback's own output contains the marker; it is still returned
	// verbatim with no further search.
	gen := &fakeGenerator{outputs: []string{
		DefaultInsufficiencyMarker,
		DefaultInsufficiencyMarker,
	}}
	search := &fakeSearcher{snippets: []string{"s"}}

	r, err := New(narrative, search, gen, Config{}, nil)
	require.NoError(t, err)

	answer, err := r.Resolve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, DefaultInsufficiencyMarker, answer.Text)
	assert.Equal(t, 1, search.calls)
	assert.Len(t, gen.prompts, 2)
}

func TestResolveCustomMarker(t *testing.T) {
	gen := &fakeGenerator{outputs: []string{"CANNOT_SAY", "from corpus"}}
	search := &fakeSearcher{snippets: []string{"s"}}

	r, err := New(narrative, search, gen, Config{Marker: "CANNOT_SAY"}, nil)
	require.NoError(t, err)

	answer, err := r.Resolve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, TierFallback, answer.Tier)
	assert.Contains(t, gen.prompts[0], "CANNOT_SAY")
}

func TestResolveSearchErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{outputs: []string{DefaultInsufficiencyMarker}}
	search := &fakeSearcher{err: errors.New("index gone")}

	r, err := New(narrative, search, gen, Config{}, nil)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback corpus search")
}

func TestResolveEmptyQuestion(t *testing.T) {
	r, err := New(narrative, &fakeSearcher{}, &fakeGenerator{outputs: []string{"x"}}, Config{}, nil)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrMissingPrerequisite)
}

func TestNewValidatesDependencies(t *testing.T) {
	gen := &fakeGenerator{outputs: []string{"x"}}

	_, err := New("", &fakeSearcher{}, gen, Config{}, nil)
	assert.ErrorIs(t, err, common.ErrMissingPrerequisite)

	_, err = New(narrative, nil, gen, Config{}, nil)
	assert.ErrorIs(t, err, common.ErrMissingPrerequisite)

	_, err = New(narrative, &fakeSearcher{}, nil, Config{}, nil)
	assert.ErrorIs(t, err, common.ErrMissingPrerequisite)
}
