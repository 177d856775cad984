package stats

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wordmonster/internal/model"
)

func TestWrongListOrder(t *testing.T) {
	wrong := model.WrongCounts{"cat": 2, "dog": 5, "fish": 2, "bird": 0}

	entries := WrongList(words, wrong, 0)
	require.Len(t, entries, 3)
	assert.Equal(t, "dog", entries[0].Word.EN)
	assert.Equal(t, 5, entries[0].Count)
	assert.Equal(t, "cat", entries[1].Word.EN)
	assert.Equal(t, "Fish", entries[2].Word.EN)
}

func TestWrongListLimit(t *testing.T) {
	list := make([]model.WordPair, 0, 100)
	wrong := model.WrongCounts{}
	for i := 0; i < 100; i++ {
		en := fmt.Sprintf("w%03d", i)
		list = append(list, model.WordPair{EN: en, ZH: "词"})
		wrong[en] = i + 1
	}

	entries := WrongList(list, wrong, DefaultWrongLimit)
	require.Len(t, entries, DefaultWrongLimit)
	assert.Equal(t, "w099", entries[0].Word.EN)
	assert.Equal(t, 21, entries[len(entries)-1].Count)
}

func TestWrongListSkipsDuplicates(t *testing.T) {
	list := []model.WordPair{{EN: "cat", ZH: "猫"}, {EN: "Cat ", ZH: "猫咪"}}
	entries := WrongList(list, model.WrongCounts{"cat": 1}, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "猫", entries[0].Word.ZH)
}

func TestRenderWrongList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderWrongList(&buf, nil, 0))
	assert.Equal(t, "No wrong answers yet.\n", buf.String())

	buf.Reset()
	entries := []WrongEntry{
		{Word: model.WordPair{EN: "giraffe", ZH: "长颈鹿"}, Count: 12},
		{Word: model.WordPair{EN: "cat", ZH: "猫"}, Count: 3},
	}
	require.NoError(t, RenderWrongList(&buf, entries, 0))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"English  Chinese  Wrong",
		"giraffe  长颈鹿      12",
		"cat      猫           3",
	}, lines)

	buf.Reset()
	require.NoError(t, RenderWrongList(&buf, entries, 12))
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 12, line)
	}
}
