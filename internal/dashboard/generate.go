package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"wsnsim/internal/routing"
	"wsnsim/internal/telemetry"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Data is passed to every dashboard template.
type Data struct {
	RoundTable  string
	ResultTable string
	Protocols   []string
}

// Render parses the embedded dashboard templates and writes rendered
// dashboards to outDir. Templates read the datasource uid through env.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
		"last": func(i int, s []string) bool { return i == len(s)-1 },
	}
	data := Data{
		RoundTable:  telemetry.RoundTableName,
		ResultTable: telemetry.ResultTableName,
		Protocols:   routing.Protocols,
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, e := range names {
		tplName := e.Name()
		t, err := template.New(tplName).Funcs(funcMap).ParseFS(templates, "templates/"+tplName)
		if err != nil {
			return err
		}
		var b strings.Builder
		if err := t.Execute(&b, data); err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(tplName, ".tmpl"))
		if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}
