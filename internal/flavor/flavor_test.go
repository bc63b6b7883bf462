package flavor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nightfall/internal/claim"
	"github.com/ppiankov/nightfall/internal/llm"
	"github.com/ppiankov/nightfall/internal/model"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Embellish(ctx context.Context, req llm.EmbellishRequest) (*llm.EmbellishResponse, error) {
	args := m.Called(req)
	if resp := args.Get(0); resp != nil {
		return resp.(*llm.EmbellishResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDefaultLibrary_PlainLinesNeverClaim(t *testing.T) {
	lib := Default()
	c := claim.NewClassifier()
	vars := Vars{"target": "Corin", "speaker": "Briar"}

	check := func(key string, lines []string) {
		if strings.HasPrefix(key, claim.TemplatePrefix) {
			return
		}
		for _, line := range lines {
			_, ok := c.Classify(Render(line, vars))
			assert.False(t, ok, "%s line reads as a claim: %q", key, line)
		}
	}
	for key, lines := range lib.Lines {
		check(key, lines)
	}
	for _, byKey := range lib.Characters {
		for key, lines := range byKey {
			check(key, lines)
		}
	}
}

func TestDefaultLibrary_HasClaimTemplates(t *testing.T) {
	lib := Default()
	for _, role := range []model.Role{model.RoleSeer, model.RoleMedium, model.RoleKnight} {
		_, err := lib.Lookup("", claim.TemplateKey(role))
		assert.NoError(t, err, role)
	}
}

func TestLookup(t *testing.T) {
	lib := Default()

	own, err := lib.Lookup("Briar", "discussion.idle")
	require.NoError(t, err)
	assert.Len(t, own, 1)

	shared, err := lib.Lookup("Corin", "discussion.idle")
	require.NoError(t, err)
	assert.Greater(t, len(shared), 1)

	_, err = lib.Lookup("Corin", "no.such.key")
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestRender(t *testing.T) {
	assert.Equal(t, "Corin looks shifty.", Render("{target} looks shifty.", Vars{"target": "Corin"}))
	assert.Equal(t, "{other} stays", Render("{other} stays", Vars{"target": "x"}))
	assert.Equal(t, "plain", Render("plain", nil))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lines:\n  suspect:\n    - \"{target}!\"\n"), 0644))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "...", lib.Default)
	assert.Equal(t, []string{"suspect"}, lib.Keys())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("default: x\n"))
	assert.Error(t, err, "a library without lines is invalid")

	_, err = Parse([]byte("lines: [unterminated"))
	assert.Error(t, err)

	lib, err = Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, lib.Keys())
}

func briar() *model.Player {
	return model.NewPlayer(2, "Briar", model.RoleVillager)
}

func TestNarrator_WithoutProvider(t *testing.T) {
	n := NewNarrator(Default(), Options{Seed: 1})

	line := n.Line(context.Background(), briar(), "suspect", Vars{"target": "Corin"})
	assert.Contains(t, line, "Corin")

	assert.Equal(t, "...", n.Line(context.Background(), briar(), "no.such.key", nil))
	assert.NotEmpty(t, n.Line(context.Background(), nil, "discussion.idle", nil))
}

func TestNarrator_EmbellishesAndCaches(t *testing.T) {
	p := &mockProvider{}
	p.On("Embellish", mock.MatchedBy(func(req llm.EmbellishRequest) bool {
		return req.Speaker == "Briar" && assert.ObjectsAreEqual([]string{"Corin"}, req.Names)
	})).Return(&llm.EmbellishResponse{Line: "Corin. Definitely Corin."}, nil).Once()

	lib, err := Parse([]byte("lines:\n  suspect:\n    - \"{target} has me worried.\"\n"))
	require.NoError(t, err)
	n := NewNarrator(lib, Options{Provider: p, Seed: 1})

	for i := 0; i < 3; i++ {
		assert.Equal(t, "Corin. Definitely Corin.", n.Line(context.Background(), briar(), "suspect", Vars{"target": "Corin"}))
	}
	p.AssertExpectations(t)
}

func TestNarrator_FallsBackToTemplate(t *testing.T) {
	lib, err := Parse([]byte("lines:\n  discussion.idle:\n    - \"Quiet day.\"\n"))
	require.NoError(t, err)

	t.Run("provider error", func(t *testing.T) {
		p := &mockProvider{}
		p.On("Embellish", mock.Anything).Return(nil, errors.New("boom"))
		n := NewNarrator(lib, Options{Provider: p, Seed: 1})

		assert.Equal(t, "Quiet day.", n.Line(context.Background(), briar(), "discussion.idle", nil))
	})

	t.Run("rewrite reads as a claim", func(t *testing.T) {
		p := &mockProvider{}
		p.On("Embellish", mock.Anything).Return(&llm.EmbellishResponse{Line: "Quiet day. I am the seer, by the way."}, nil)
		n := NewNarrator(lib, Options{Provider: p, Seed: 1})

		assert.Equal(t, "Quiet day.", n.Line(context.Background(), briar(), "discussion.idle", nil))
	})
}

func TestNarrator_LiteralKeysNotRewritten(t *testing.T) {
	p := &mockProvider{}
	n := NewNarrator(Default(), Options{Provider: p, Seed: 1})

	line := n.Line(context.Background(), briar(), claim.TemplateKey(model.RoleSeer), nil)
	assert.NotEmpty(t, line)
	line = n.Line(context.Background(), briar(), "reveal.seer.black", Vars{"target": "Corin"})
	assert.Contains(t, line, "Corin")

	p.AssertNotCalled(t, "Embellish", mock.Anything)
}
