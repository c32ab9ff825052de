package vizdash

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/vizdash/config"
	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/metrics"
)

func TestRegistryNames(t *testing.T) {
	reg := Open(config.Default())
	assert.Equal(t, []string{"cancer", "survey"}, reg.Names())

	_, err := reg.Get("weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[cancer survey]")
}

func TestRegistrySurveyPass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"YEAR,SEX,AGEGRP,RACE_WHITE,RACE_BLACK,RACE_ASIAN,RACE_AIAN,RACE_OTHER,SMOKER,PERWT\n"+
			"2019,1,2,White,,,,,1,100\n"+
			"2019,1,2,White,,,,,0,100\n"), 0o600))

	cfg := config.Default()
	cfg.Survey.Files = []string{path}
	reg := Open(cfg, WithMetrics(metrics.New(prometheus.NewRegistry())))

	p, err := reg.Get("survey")
	require.NoError(t, err)
	ctx := context.Background()
	state, err := p.State(ctx, dashboard.Selection{})
	require.NoError(t, err)
	pass, err := p.Run(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 1, pass.Rows)
	assert.Empty(t, pass.Notice)
	assert.Equal(t, 1, p.Cache().Loads())
}
