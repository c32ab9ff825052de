package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extract = "YEAR,SEX,AGEGRP,RACE_WHITE,RACE_BLACK,RACE_ASIAN,RACE_AIAN,RACE_OTHER,SMOKER,PERWT\n" +
	"2019,1,2,White,,,,,1,100\n" +
	"2019,1,2,White,,,,,0,300\n" +
	"2019,2,3,,,Asian,,,1,50\n" +
	"2020,2,4,,Black,,,,1,200\n"

// writeConfig points the survey dashboard at a temp extract and returns the
// config path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "extract.csv")
	require.NoError(t, os.WriteFile(data, []byte(extract), 0o600))
	cfg := filepath.Join(dir, "vizdash.yaml")
	body := "log:\n  level: debug\nsurvey:\n  files:\n    - " + data + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))
	return cfg
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vizdash "+version+"\n", out)
}

func TestRenderJSON(t *testing.T) {
	cfg := writeConfig(t)
	out, logs, err := run(t, "render", "survey", "--config", cfg,
		"--select", "YEAR=2019", "--select", "SEX=Male", "--select", "Race=White")
	require.NoError(t, err)

	var pass struct {
		Dashboard string `json:"dashboard"`
		Rows      int    `json:"rows"`
		Notice    string `json:"notice"`
		Charts    []struct {
			Title string           `json:"title"`
			Data  []map[string]any `json:"data"`
		} `json:"charts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &pass))
	assert.Equal(t, "survey", pass.Dashboard)
	assert.Equal(t, 1, pass.Rows)
	assert.Empty(t, pass.Notice)
	require.Len(t, pass.Charts, 3)
	assert.Equal(t, "Smoking prevalence by race in 2019", pass.Charts[0].Title)
	require.Len(t, pass.Charts[0].Data, 1)
	assert.Equal(t, 25.0, pass.Charts[0].Data[0]["Prevalence"])

	assert.Contains(t, logs, "level=DEBUG")
}

func TestRenderDefaultsAndNotice(t *testing.T) {
	cfg := writeConfig(t)
	out, _, err := run(t, "render", "survey", "--config", cfg, "--format", "text",
		"--select", "SEX=Male", "--select", "Race=White,Martian")
	require.NoError(t, err)
	assert.Contains(t, out, "Smoking prevalence by race in 2019 (1 marks)")
	assert.Contains(t, out, "No data available for Martian.")
	assert.Contains(t, out, "Total (1 rows)")
}

func TestRenderCSVToFile(t *testing.T) {
	cfg := writeConfig(t)
	dest := filepath.Join(t.TempDir(), "subset.csv")
	out, _, err := run(t, "render", "survey", "--config", cfg, "--format", "csv", "--out", dest,
		"--select", "YEAR=2020", "--select", "SEX=Female", "--select", "Race=Black")
	require.NoError(t, err)
	assert.Empty(t, out)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "YEAR,SEX,AGEGRP,Race,Smokers,Population,Prevalence", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2020,Female,65+,Black,"))
}

func TestRenderArrow(t *testing.T) {
	cfg := writeConfig(t)
	out, _, err := run(t, "render", "survey", "--config", cfg, "--format", "arrow")
	require.NoError(t, err)

	rdr, err := ipc.NewReader(strings.NewReader(out))
	require.NoError(t, err)
	defer rdr.Release()
	assert.Equal(t, 7, rdr.Schema().NumFields())
}

func TestRenderErrors(t *testing.T) {
	cfg := writeConfig(t)

	_, _, err := run(t, "render", "weather", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dashboard "weather"`)

	_, _, err = run(t, "render", "survey", "--config", cfg, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, _, err = run(t, "render", "survey", "--config", cfg, "--select", "Planet=Mars")
	require.Error(t, err)

	_, _, err = run(t, "render", "survey", "--config", cfg, "--select", "novalue")
	require.Error(t, err)

	_, _, err = run(t, "render", "survey", "--config", cfg, "--log-level", "loud")
	require.Error(t, err)
}

func TestWidgets(t *testing.T) {
	cfg := writeConfig(t)
	out, _, err := run(t, "widgets", "survey", "--config", cfg, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Select a Year [YEAR, slider]")
	assert.Contains(t, out, "range:   2019..2020")
	assert.Contains(t, out, "options: Asian, White, Black")

	out, _, err = run(t, "widgets", "survey", "--config", cfg)
	require.NoError(t, err)
	var widgets []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &widgets))
	assert.Len(t, widgets, 3)
}

func TestMetricsOut(t *testing.T) {
	cfg := writeConfig(t)
	dest := filepath.Join(t.TempDir(), "vizdash.prom")
	_, _, err := run(t, "render", "survey", "--config", cfg, "--metrics-out", dest)
	require.NoError(t, err)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `vizdash_passes_total{dashboard="survey",outcome="ok"} 1`)
}

func TestDescribe(t *testing.T) {
	cfg := writeConfig(t)
	out, _, err := run(t, "describe", "survey", "--config", cfg, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "survey: 3 rows")
	assert.Contains(t, out, "widget=slider")

	out, _, err = run(t, "describe", "survey", "--config", cfg)
	require.NoError(t, err)
	var profile struct {
		Rows    int `json:"rows"`
		Columns []struct {
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, 3, profile.Rows)
	assert.Len(t, profile.Columns, 7)
}
