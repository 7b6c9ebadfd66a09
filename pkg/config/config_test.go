package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/config"
	_ "github.com/nsxbet/klc-reviewer/pkg/rules/footprint"
	_ "github.com/nsxbet/klc-reviewer/pkg/rules/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, cfg *config.Config)
		wantErr string
	}{
		{
			name: "yaml",
			file: "klc.yaml",
			content: `id: team
rules:
  - id: f7.6
    kind: footprint
    level: WARNING
    payload:
      Min_Drill: 0.3
  - id: S3.1
    level: disabled
settings:
  footprints_dir: /srv/footprints
  jobs: 4
  metrics: true
`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "team", cfg.ID)
				require.Len(t, cfg.Rules, 2)
				assert.Equal(t, "F7.6", cfg.Rules[0].ID)
				assert.Equal(t, types.RuleLevel_WARNING, cfg.Rules[0].Level)
				assert.Equal(t, 0.3, cfg.Rules[0].Payload["min_drill"])
				assert.Equal(t, types.RuleLevel_DISABLED, cfg.Rules[1].Level)
				assert.Equal(t, "/srv/footprints", cfg.Settings.FootprintsDir)
				assert.Equal(t, 4, cfg.Settings.Jobs)
				assert.True(t, cfg.Settings.Metrics)
			},
		},
		{
			name:    "json",
			file:    "klc.json",
			content: `{"id": "ci", "rules": [{"id": "G1.7"}], "settings": {"no_warnings": true}}`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "ci", cfg.ID)
				require.Len(t, cfg.Rules, 1)
				assert.Equal(t, types.RuleLevel_ERROR, cfg.Rules[0].Level, "level defaults to ERROR")
				assert.True(t, cfg.Settings.NoWarnings)
			},
		},
		{
			name:    "unknown rule",
			file:    "bad.yaml",
			content: "rules:\n  - id: F99.1\n",
			wantErr: `unknown rule "F99.1"`,
		},
		{
			name:    "rule of the wrong kind",
			file:    "bad.yaml",
			content: "rules:\n  - id: S3.1\n    kind: footprint\n",
			wantErr: `unknown rule "S3.1"`,
		},
		{
			name:    "duplicate rule",
			file:    "bad.yaml",
			content: "rules:\n  - id: G1.1\n  - id: g1.1\n",
			wantErr: "configured twice",
		},
		{
			name:    "negative jobs",
			file:    "bad.yaml",
			content: "settings:\n  jobs: -1\n",
			wantErr: "jobs must not be negative",
		},
		{
			name:    "garbage",
			file:    "bad.yaml",
			content: "rules: [unterminated",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadFromFile(writeFile(t, tt.file, tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestRuleLookupPrefersKind(t *testing.T) {
	cfg := &config.Config{Rules: []*types.ReviewRule{
		{ID: "G1.1", Level: types.RuleLevel_WARNING},
		{ID: "G1.1", Kind: types.KindSymbol, Level: types.RuleLevel_DISABLED},
	}}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, types.RuleLevel_DISABLED, cfg.Rule(types.KindSymbol, "G1.1").Level)
	assert.Equal(t, types.RuleLevel_WARNING, cfg.Rule(types.KindFootprint, "G1.1").Level)
	assert.Nil(t, cfg.Rule(types.KindFootprint, "F5.1"))

	assert.Contains(t, cfg.Disabled(types.KindSymbol), "G1.1")
	assert.Empty(t, cfg.Disabled(types.KindFootprint))
}

func TestCatalogMatchesRegistry(t *testing.T) {
	rules, err := config.Catalog()
	require.NoError(t, err)

	for _, kind := range []types.Kind{types.KindFootprint, types.KindSymbol} {
		var catalogIDs []string
		for _, r := range rules {
			if r.Kind != kind {
				continue
			}
			catalogIDs = append(catalogIDs, r.ID)
			meta, ok := advisor.Lookup(kind, r.ID)
			require.True(t, ok, "catalog rule %s %s is not registered", kind, r.ID)
			assert.Equal(t, meta.Title, r.Title, "title of %s", r.ID)
		}
		var registered []string
		for _, m := range advisor.Rules(kind) {
			registered = append(registered, m.ID)
		}
		assert.ElementsMatch(t, registered, catalogIDs, "catalog of %s rules", kind)
	}
}

func TestCatalogConfig(t *testing.T) {
	cfg, err := config.CatalogConfig(types.KindFootprint)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Rules)

	for _, r := range cfg.Rules {
		assert.Equal(t, types.KindFootprint, r.Kind)
		assert.Equal(t, types.RuleLevel_ERROR, r.Level)
	}
	drill := cfg.Rule(types.KindFootprint, "F7.6")
	require.NotNil(t, drill)
	assert.Equal(t, 0.2, drill.Payload["min_drill"])
	require.NoError(t, cfg.Validate())
}

func TestLoadSchema(t *testing.T) {
	path := writeFile(t, "schema.yaml", `- id: S3.1
  kind: symbol
  title: centering
  level: WARNING
- id: F7.6
  kind: footprint
  title: drill
  componentList:
    - key: min_drill
      payload:
        type: NUMBER
        default: 1
`)
	rules, err := config.LoadSchema(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	cfg, err := config.ConvertSchemaRulesToConfig(rules, "")
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, types.RuleLevel_WARNING, cfg.Rules[0].Level)
	assert.Equal(t, 1.0, cfg.Rules[1].Payload["min_drill"])

	bad := writeFile(t, "bad.yaml", "- id: X1\n  kind: board\n")
	_, err = config.LoadSchema(bad)
	require.Error(t, err)
}
