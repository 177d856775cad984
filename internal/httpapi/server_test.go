package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wordmonster/internal/model"
	"github.com/verte-zerg/wordmonster/internal/progress"
	"github.com/verte-zerg/wordmonster/internal/session"
)

var animals = []model.WordPair{
	{EN: "cat", ZH: "猫"},
	{EN: "dog", ZH: "狗"},
	{EN: "bird", ZH: "鸟"},
	{EN: "fish", ZH: "鱼"},
}

// orderedSource keeps pool order and asks every word with one question type.
type orderedSource struct {
	qt model.QuestionType
}

func (s orderedSource) Shuffle(words []model.WordPair) []model.WordPair {
	return append([]model.WordPair(nil), words...)
}

func (s orderedSource) ChooseType() model.QuestionType { return s.qt }

func (s orderedSource) BuildOptions(correct model.WordPair, pool []model.WordPair, count int) []model.WordPair {
	out := []model.WordPair{correct}
	for _, w := range pool {
		if len(out) < count && w.EN != correct.EN {
			out = append(out, w)
		}
	}
	return out
}

func newTestServer(t *testing.T, qt model.QuestionType, mastered []string, wrong map[string]int) (*Server, *progress.MemoryPersister) {
	t.Helper()
	p := progress.NewMemoryPersister(mastered, wrong)
	ps := progress.Load(context.Background(), p, zerolog.Nop())
	engine := session.NewEngine(animals, ps, orderedSource{qt: qt})
	return New(engine, zerolog.Nop()), p
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionEnToZh, nil, nil)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionEnToZh, nil, nil)
	rec := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())
}

func TestCounts(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionEnToZh, []string{"cat"}, map[string]int{"dog": 2})
	rec := do(t, s, http.MethodGet, "/counts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":4,"mastered":1,"unmastered":3,"wrong":1,"pools":{"normal":3,"review":1,"wrong":1}}`, rec.Body.String())
}

func TestWrongList(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionEnToZh, nil, map[string]int{"dog": 2, "fish": 5, "cat": 2})

	rec := do(t, s, http.MethodGet, "/wrong", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"en":"fish","zh":"鱼","count":5},{"en":"cat","zh":"猫","count":2},{"en":"dog","zh":"狗","count":2}]`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/wrong?limit=1", "")
	assert.JSONEq(t, `[{"en":"fish","zh":"鱼","count":5}]`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/wrong?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChoiceRun(t *testing.T) {
	s, p := newTestServer(t, model.QuestionEnToZh, nil, nil)

	rec := do(t, s, http.MethodPost, "/session", `{"mode":"normal"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[stateView](t, rec)
	assert.Equal(t, "awaiting", st.Stage)
	assert.Equal(t, 4, st.PoolSize)
	assert.Equal(t, session.StartingHearts, st.Hearts)
	require.NotNil(t, st.Question)
	assert.Equal(t, "cat", st.Question.Prompt)
	assert.Equal(t, []string{"猫", "狗", "鸟", "鱼"}, st.Question.Options)
	assert.Empty(t, st.Question.Answer)

	rec = do(t, s, http.MethodPost, "/session/choice", `{"value":"狗"}`)
	res := decode[answerRes](t, rec)
	assert.Equal(t, "hint", res.Outcome)
	require.NotNil(t, res.State.Hint)
	assert.NotEmpty(t, res.State.Hint.Text)

	rec = do(t, s, http.MethodPost, "/session/advance", "")
	assert.False(t, decode[stepRes](t, rec).OK)

	rec = do(t, s, http.MethodPost, "/session/choice", `{"value":"猫"}`)
	res = decode[answerRes](t, rec)
	assert.Equal(t, "correct", res.Outcome)
	assert.Equal(t, 1, res.State.Score)
	assert.Equal(t, "猫", res.State.Question.Answer)
	assert.Equal(t, []string{"cat"}, p.Mastery())
	assert.Equal(t, map[string]int{"cat": 1}, p.WrongCounts())

	rec = do(t, s, http.MethodPost, "/session/choice", `{"value":"猫"}`)
	assert.Equal(t, "ignored", decode[answerRes](t, rec).Outcome)

	rec = do(t, s, http.MethodPost, "/session/advance", "")
	step := decode[stepRes](t, rec)
	assert.True(t, step.OK)
	assert.Equal(t, 1, step.State.Index)
	assert.Equal(t, "dog", step.State.Question.Prompt)

	rec = do(t, s, http.MethodGet, "/session/summary", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpellingRunToSummary(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionSpell, nil, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/session", `{"mode":"normal"}`).Code)

	rec := do(t, s, http.MethodPost, "/session/input", `{"text":"ca"}`)
	assert.Equal(t, "ca", decode[stateView](t, rec).Input)

	rec = do(t, s, http.MethodPost, "/session/spelling", `{"text":"   "}`)
	assert.Equal(t, "ignored", decode[answerRes](t, rec).Outcome)

	rec = do(t, s, http.MethodPost, "/session/spelling", `{"text":"kat"}`)
	res := decode[answerRes](t, rec)
	assert.Equal(t, "hint", res.Outcome)
	assert.Empty(t, res.State.Input)
	require.NotNil(t, res.State.Hint)
	assert.Equal(t, "c _ _", res.State.Hint.Mask)

	for _, w := range animals {
		rec = do(t, s, http.MethodPost, "/session/spelling", `{"text":"`+strings.ToUpper(w.EN)+`"}`)
		require.Equal(t, "correct", decode[answerRes](t, rec).Outcome, w.EN)
		require.True(t, decode[stepRes](t, do(t, s, http.MethodPost, "/session/advance", "")).OK)
	}

	rec = do(t, s, http.MethodGet, "/session", "")
	st := decode[stateView](t, rec)
	assert.Equal(t, "ended", st.Stage)
	assert.Nil(t, st.Question)

	rec = do(t, s, http.MethodGet, "/session/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[summaryRes](t, rec)
	assert.Equal(t, 4, sum.Score)
	assert.Equal(t, 4, sum.Mastered)
	assert.Equal(t, 4, sum.Total)
	assert.False(t, sum.GameOver)
	assert.NotEmpty(t, sum.RunID)
}

func TestGameOverNeedsEnd(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionZhToEn, nil, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/session", `{"mode":"normal"}`).Code)

	for i := 0; i < session.StartingHearts; i++ {
		do(t, s, http.MethodPost, "/session/choice", `{"value":"nope"}`)
		do(t, s, http.MethodPost, "/session/choice", `{"value":"nope"}`)
		if i < session.StartingHearts-1 {
			require.True(t, decode[stepRes](t, do(t, s, http.MethodPost, "/session/advance", "")).OK)
		}
	}

	step := decode[stepRes](t, do(t, s, http.MethodPost, "/session/advance", ""))
	assert.False(t, step.OK)
	assert.True(t, step.State.GameOver)
	assert.Equal(t, 0, step.State.Hearts)

	step = decode[stepRes](t, do(t, s, http.MethodPost, "/session/end", ""))
	assert.True(t, step.OK)
	assert.Equal(t, "ended", step.State.Stage)

	sum := decode[summaryRes](t, do(t, s, http.MethodGet, "/session/summary", ""))
	assert.True(t, sum.GameOver)
	assert.Equal(t, 0, sum.Score)
}

func TestStartErrors(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionEnToZh, nil, nil)

	rec := do(t, s, http.MethodPost, "/session", `{"mode":"review"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"not_enough_words"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/session", `{"mode":"hard"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/session", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "normal", decode[stateView](t, rec).Mode)
}

func TestDefaultMode(t *testing.T) {
	p := progress.NewMemoryPersister([]string{"cat", "dog", "bird", "fish"}, nil)
	ps := progress.Load(context.Background(), p, zerolog.Nop())
	engine := session.NewEngine(animals, ps, orderedSource{qt: model.QuestionEnToZh})
	s := New(engine, zerolog.Nop(), WithDefaultMode(model.ModeReview))

	rec := do(t, s, http.MethodPost, "/session", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "review", decode[stateView](t, rec).Mode)

	rec = do(t, s, http.MethodPost, "/session", `{"mode":"normal"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReturnHome(t *testing.T) {
	s, _ := newTestServer(t, model.QuestionEnToZh, nil, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/session", `{"mode":"normal"}`).Code)

	rec := do(t, s, http.MethodDelete, "/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[stateView](t, rec)
	assert.Equal(t, "idle", st.Stage)
	assert.Empty(t, st.RunID)
	assert.Nil(t, st.Question)
}

func TestResetRequiresConfirmation(t *testing.T) {
	s, p := newTestServer(t, model.QuestionEnToZh, []string{"cat", "dog"}, map[string]int{"dog": 3})

	rec := do(t, s, http.MethodPost, "/progress/reset", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"confirmation_required"}`, rec.Body.String())
	assert.Len(t, p.Mastery(), 2)

	rec = do(t, s, http.MethodPost, "/progress/reset", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[countsRes](t, rec)
	assert.Equal(t, 0, c.Mastered)
	assert.Equal(t, 1, c.Wrong)
	assert.Empty(t, p.Mastery())
	assert.Equal(t, map[string]int{"dog": 3}, p.WrongCounts())
}
