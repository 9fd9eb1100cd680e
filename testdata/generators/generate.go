package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bank-statement-consolidator/internal/fixtures"
)

// Scenario represents one sample export written by the generator
type Scenario struct {
	Name        string
	File        string
	Description string
	Build       func(g *ExportGenerator) *fixtures.Export
}

// ExportGenerator creates bank export workbooks with randomized records
type ExportGenerator struct {
	Records       int
	Continuations int
	rng           *rand.Rand
}

var scenarios = []Scenario{
	{
		Name:        "clean",
		File:        "Extrato 422-6 Janeiro.xlsx",
		Description: "well-formed export, one line per record",
		Build: func(g *ExportGenerator) *fixtures.Export {
			return g.statement(fixtures.ExportWidth, 0)
		},
	},
	{
		Name:        "continuations",
		File:        "Extrato 558-4 Janeiro.xlsx",
		Description: "records split over several lines in Histórico and supplier",
		Build: func(g *ExportGenerator) *fixtures.Export {
			return g.statement(fixtures.ExportWidth, g.Continuations)
		},
	},
	{
		Name:        "orphans",
		File:        "Extrato 422-6 Fevereiro.xlsx",
		Description: "continuation lines before the first record",
		Build: func(g *ExportGenerator) *fixtures.Export {
			e := fixtures.NewExport(fixtures.ExportWidth)
			e.AddRow(map[int]string{9: "linha sem lançamento", 13: "sem fornecedor"})
			e.Rows = append(e.Rows, g.statement(fixtures.ExportWidth, g.Continuations).Rows...)
			return e
		},
	},
	{
		Name:        "unmapped",
		File:        "Caixa_Poupanca Janeiro.xlsx",
		Description: "account missing from the bank mapping, tagged by filename prefix",
		Build: func(g *ExportGenerator) *fixtures.Export {
			return g.statement(fixtures.ExportWidth, 1)
		},
	},
	{
		Name:        "wide",
		File:        "Extrato 558-4 Marco.xlsx",
		Description: "export with extra trailing columns",
		Build: func(g *ExportGenerator) *fixtures.Export {
			return g.statement(fixtures.ExportWidth+3, 1)
		},
	},
	{
		Name:        "narrow",
		File:        "Extrato recortado.xlsx",
		Description: "export cut to 15 columns, fails final selection",
		Build: func(g *ExportGenerator) *fixtures.Export {
			return g.statement(15, 0)
		},
	},
	{
		Name:        "truncated",
		File:        "Extrato truncado.xlsx",
		Description: "export cut to 12 columns, fails the merge",
		Build: func(g *ExportGenerator) *fixtures.Export {
			return g.statement(12, 0)
		},
	},
	{
		Name:        "empty",
		File:        "Extrato vazio.xlsx",
		Description: "title block and header only",
		Build: func(g *ExportGenerator) *fixtures.Export {
			return fixtures.NewExport(fixtures.ExportWidth)
		},
	},
}

func main() {
	var (
		outputDir     = flag.String("output-dir", "generated", "Output directory for generated files")
		seed          = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
		scenario      = flag.String("scenario", "all", "Scenario to generate, or 'all'")
		records       = flag.Int("records", 25, "Records per export")
		continuations = flag.Int("continuations", 2, "Maximum continuation lines per record")
		corrupt       = flag.Bool("corrupt", true, "Also write a file that is not a workbook")
		list          = flag.Bool("list", false, "List available scenarios")
	)
	flag.Parse()

	if *list {
		listScenarios()
		return
	}

	if *records < 1 || *continuations < 0 {
		log.Fatalf("records must be positive and continuations non-negative")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	generator := &ExportGenerator{
		Records:       *records,
		Continuations: *continuations,
		rng:           rand.New(rand.NewSource(*seed)),
	}

	written := 0
	for _, s := range scenarios {
		if *scenario != "all" && *scenario != s.Name {
			continue
		}
		path := filepath.Join(*outputDir, s.File)
		if err := writeExport(path, s.Build(generator)); err != nil {
			log.Fatalf("Failed to generate %s: %v", s.Name, err)
		}
		fmt.Printf("  %-14s %s\n", s.Name, path)
		written++
	}

	if *corrupt && *scenario == "all" {
		path := filepath.Join(*outputDir, "Extrato corrompido.xlsx")
		if err := os.WriteFile(path, []byte("PK\x03\x04 not really a workbook"), 0644); err != nil {
			log.Fatalf("Failed to write corrupt file: %v", err)
		}
		fmt.Printf("  %-14s %s\n", "corrupt", path)
		written++
	}

	if written == 0 {
		log.Fatalf("Unknown scenario: %s (use -list)", *scenario)
	}

	fmt.Printf("Generated %d files in %s\n", written, *outputDir)
	fmt.Printf("Seed used: %d\n", *seed)
}

func listScenarios() {
	fmt.Println("Available scenarios:")
	names := make([]string, 0, len(scenarios))
	byName := make(map[string]Scenario, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.Name)
		byName[s.Name] = s
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-14s %s\n", name, byName[name].Description)
	}
}

// statement builds an export of width columns. Each record is followed by up
// to maxContinuations continuation lines.
func (g *ExportGenerator) statement(width, maxContinuations int) *fixtures.Export {
	e := fixtures.NewExport(width)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := 0; i < g.Records; i++ {
		day = day.AddDate(0, 0, g.rng.Intn(2))
		e.AddMain(fmt.Sprintf("%06d", 1000+i), map[int]string{
			2:  day.Format("02/01/2006"),
			4:  fmt.Sprintf("NF%05d", g.rng.Intn(100000)),
			5:  g.pick("Pagamento", "Transferência", "Tarifa", "Boleto"),
			9:  g.pick("Pagamento fornecedor", "Tarifa bancária", "Transferência entre contas", "Compra de material"),
			10: g.pick("Parte A", "Parte B", ""),
			12: g.pick("Administrativo", "Operacional", "Financeiro"),
			13: fmt.Sprintf("%02d.%03d.%03d/0001-%02d", g.rng.Intn(100), g.rng.Intn(1000), g.rng.Intn(1000), g.rng.Intn(100)),
			18: g.amount(),
		})

		if maxContinuations == 0 {
			continue
		}
		lines := g.rng.Intn(maxContinuations + 1)
		for j := 0; j < lines; j++ {
			e.AddRow(map[int]string{
				9:  fmt.Sprintf("ref. %d/%d", j+1, g.rng.Intn(900)+100),
				13: g.pick("Comercial Silva Ltda", "Distribuidora Norte", "Serviços Gerais ME"),
			})
		}
	}

	return e
}

// amount returns a Débito value in the export's pt-BR notation, e.g. 1.234,56
func (g *ExportGenerator) amount() string {
	cents := decimal.NewFromInt(g.rng.Int63n(500000) + 100)
	value := cents.Shift(-2)

	units := value.Truncate(0).IntPart()
	frac := value.Sub(value.Truncate(0)).Shift(2).IntPart()

	grouped := fmt.Sprintf("%d", units)
	for i := len(grouped) - 3; i > 0; i -= 3 {
		grouped = grouped[:i] + "." + grouped[i:]
	}
	return fmt.Sprintf("%s,%02d", grouped, frac)
}

func (g *ExportGenerator) pick(options ...string) string {
	return options[g.rng.Intn(len(options))]
}

func writeExport(path string, e *fixtures.Export) error {
	data, err := e.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
