package httpapi

import (
	"github.com/verte-zerg/wordmonster/internal/session"
)

type stateView struct {
	RunID    string        `json:"runId,omitempty"`
	Mode     string        `json:"mode,omitempty"`
	Stage    string        `json:"stage"`
	Index    int           `json:"index"`
	PoolSize int           `json:"poolSize"`
	Hearts   int           `json:"hearts"`
	Score    int           `json:"score"`
	GameOver bool          `json:"gameOver"`
	Input    string        `json:"input,omitempty"`
	Question *questionView `json:"question,omitempty"`
	Hint     *hintView     `json:"hint,omitempty"`
}

type questionView struct {
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	// Answer is only set once the question is decided.
	Answer string `json:"answer,omitempty"`
}

type hintView struct {
	Text string `json:"text"`
	Mask string `json:"mask,omitempty"`
}

func newStateView(st session.State) stateView {
	v := stateView{
		Stage:    st.Stage.String(),
		Index:    st.Index,
		PoolSize: len(st.Pool),
		Hearts:   st.Hearts,
		Score:    st.Score,
		GameOver: st.GameOver,
		Input:    st.Input,
	}
	if st.Stage == session.StageIdle {
		return v
	}
	v.RunID = st.RunID
	v.Mode = st.Mode.String()
	if st.Stage == session.StageEnded {
		return v
	}

	q := st.Question
	qv := &questionView{Type: q.Type.String(), Prompt: q.Prompt()}
	for _, opt := range q.Options {
		qv.Options = append(qv.Options, q.OptionValue(opt))
	}
	if st.Stage.Revealed() {
		qv.Answer = q.Answer()
	}
	v.Question = qv
	if st.Stage == session.StageHinted {
		v.Hint = &hintView{Text: st.Hint.Text(), Mask: st.Hint.Mask()}
	}
	return v
}
