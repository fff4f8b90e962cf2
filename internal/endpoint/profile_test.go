package endpoint

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactProfileResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mode       string
		env        Env
		wantURL    string
		wantSource string
	}{
		{
			name:       "DevelopmentIgnoresURLVariables",
			mode:       "development",
			env:        Env{"REACT_APP_API_URL": "https://api.example.com", "VITE_API_URL": "https://vite.example.com"},
			wantURL:    "http://localhost:8000",
			wantSource: SourceDefault,
		},
		{
			name:       "EmptyModeUsesDefault",
			mode:       "",
			env:        Env{"REACT_APP_API_URL": "https://api.example.com"},
			wantURL:    "http://localhost:8000",
			wantSource: SourceDefault,
		},
		{
			name:       "ModeIsCaseSensitive",
			mode:       "Production",
			env:        Env{"REACT_APP_API_URL": "https://api.example.com"},
			wantURL:    "http://localhost:8000",
			wantSource: SourceDefault,
		},
		{
			name:       "ProductionPrefersReactVariable",
			mode:       "production",
			env:        Env{"REACT_APP_API_URL": "https://api.example.com", "VITE_API_URL": "https://vite.example.com"},
			wantURL:    "https://api.example.com",
			wantSource: "REACT_APP_API_URL",
		},
		{
			name:       "ProductionFallsBackToViteVariable",
			mode:       "production",
			env:        Env{"VITE_API_URL": "https://vite.example.com/v1"},
			wantURL:    "https://vite.example.com/v1",
			wantSource: "VITE_API_URL",
		},
		{
			name:       "ProductionEmptyReactVariableCountsAsUnset",
			mode:       "production",
			env:        Env{"REACT_APP_API_URL": "", "VITE_API_URL": "https://vite.example.com"},
			wantURL:    "https://vite.example.com",
			wantSource: "VITE_API_URL",
		},
		{
			name:       "ProductionWithoutVariablesUsesLiteral",
			mode:       "production",
			env:        Env{},
			wantURL:    "http://localhost:8000",
			wantSource: SourceDefault,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReactProfile.Resolve(tc.mode, tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.wantURL, got.BaseURL)
			assert.Equal(t, tc.wantSource, got.Source)
			assert.Equal(t, "react", got.Profile)
			assert.Equal(t, tc.mode, got.Mode)
		})
	}
}

func TestVercelProfileResolve(t *testing.T) {
	t.Parallel()

	t.Run("ProductionUsesViteVariable", func(t *testing.T) {
		got, err := VercelProfile.Resolve("production", Env{"VITE_API_URL": "https://story.example.com/api"})
		require.NoError(t, err)
		assert.Equal(t, "https://story.example.com/api", got.BaseURL)
		assert.Equal(t, "VITE_API_URL", got.Source)
	})

	t.Run("PreviewUsesLocalDefault", func(t *testing.T) {
		got, err := VercelProfile.Resolve("preview", Env{"VITE_API_URL": "https://story.example.com/api"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api", got.BaseURL)
	})

	t.Run("AbsentModeUsesLocalDefault", func(t *testing.T) {
		got, err := VercelProfile.ResolveEnv(Env{"VITE_API_URL": "https://story.example.com/api"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api", got.BaseURL)
		assert.Equal(t, SourceDefault, got.Source)
	})

	t.Run("ProductionWithoutURLFails", func(t *testing.T) {
		_, err := VercelProfile.Resolve("production", Env{})
		require.ErrorIs(t, err, ErrMissingBaseURL)
		assert.Contains(t, err.Error(), "VITE_API_URL")
	})
}

func TestResolveEnvReadsModeVariable(t *testing.T) {
	t.Parallel()

	env := Env{"NODE_ENV": "production", "VITE_API_URL": "https://vite.example.com"}
	got, err := ReactProfile.ResolveEnv(env)
	require.NoError(t, err)
	assert.Equal(t, "https://vite.example.com", got.BaseURL)
	assert.Equal(t, "production", got.Mode)

	env = Env{"VITE_VERCEL_ENV": "production", "VITE_API_URL": "https://vercel.example.com"}
	got, err = VercelProfile.ResolveEnv(env)
	require.NoError(t, err)
	assert.Equal(t, "https://vercel.example.com", got.BaseURL)
}

func TestResolveRejectsMalformedURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"api.example.com", "ftp://files.example.com", "https://", "http://[::1", "http://:8000", "http://:0/api"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ReactProfile.Resolve("production", Env{"REACT_APP_API_URL": raw})
			require.ErrorIs(t, err, ErrInvalidBaseURL)
			assert.Contains(t, err.Error(), "REACT_APP_API_URL")
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	env := Env{"REACT_APP_API_URL": "https://api.example.com"}
	first, err := ReactProfile.Resolve("production", env)
	require.NoError(t, err)
	second, err := ReactProfile.Resolve("production", env)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveConcurrentCallers(t *testing.T) {
	env := Env{"VITE_API_URL": "https://vite.example.com"}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ReactProfile.Resolve("production", env)
			if err != nil || got.BaseURL != "https://vite.example.com" {
				t.Errorf("unexpected resolution %+v, err %v", got, err)
			}
		}()
	}
	wg.Wait()
}

func TestLookupProfile(t *testing.T) {
	t.Parallel()

	p, err := LookupProfile("VERCEL")
	require.NoError(t, err)
	assert.Equal(t, "vercel", p.Name)

	p, err = LookupProfile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile().Name, p.Name)

	_, err = LookupProfile("angular")
	require.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfilesReturnsCopy(t *testing.T) {
	t.Parallel()

	got := Profiles()
	require.Len(t, got, 2)
	got[0].Name = "mutated"
	assert.Equal(t, "react", Profiles()[0].Name)
}
