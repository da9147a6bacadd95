package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"bayesview/adapters/layout"
	"bayesview/adapters/render"
	"bayesview/adapters/samples"
	"bayesview/app"
	"bayesview/domain/cpd"
	"bayesview/domain/network"
	"bayesview/internal/errors"
	"bayesview/internal/testkit"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	heading = color.New(color.FgHiGreen, color.Bold)
	subtle  = color.New(color.FgHiBlack)
	warn    = color.New(color.FgYellow)
)

type session struct {
	model  *network.Model
	est    *cpd.Estimation
	layout *network.Layout
}

func newGraphCmd(rt *runtime) *cobra.Command {
	var mermaid bool
	var viewport string

	cmd := &cobra.Command{
		Use:   "graph [structure]",
		Short: "Lay out a structure and print node coordinates",
		Long: `Build the structure model, compute its layout and print one line per
variable with its coordinates in [-1, 1]. With --viewport the pixel position
is printed as well.

Example: bayesview graph model_struct.txt --viewport 800x600`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := rt.svc.LoadStructure(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if mermaid {
				_, err := fmt.Fprint(out, render.Mermaid(model, ""))
				return err
			}

			l, err := rt.svc.Draw(model)
			if err != nil {
				return err
			}
			var vp *render.Viewport
			if viewport != "" {
				v, err := render.ParseViewport(viewport)
				if err != nil {
					return err
				}
				vp = &v
			}

			for _, p := range l.Placements() {
				line := fmt.Sprintf("%-12s %8.4f %8.4f", p.Variable, p.Point.X, p.Point.Y)
				if vp != nil {
					px, py := vp.ToPixels(p.Point)
					line += fmt.Sprintf("  (%.0f, %.0f)px", px, py)
				}
				fmt.Fprintln(out, line)
			}
			subtle.Fprintf(out, "%d edges, %d crossings\n", len(model.Edges()), layout.Crossings(model, l))
			return nil
		},
	}

	cmd.Flags().BoolVar(&mermaid, "mermaid", false, "Print a Mermaid flowchart instead of coordinates")
	cmd.Flags().StringVar(&viewport, "viewport", "", "Also print pixel positions for a WxH viewport")
	return cmd
}

func newTrainCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "train [structure] [samples]",
		Short: "Estimate CPDs and print every table",
		Long: `Estimate one CPD per variable by maximum likelihood and print the tables
of every variable with at most one parent. Samples are a .tsv/.csv/.xlsx file,
"sql" to run SAMPLES_QUERY, or "sql:<query>".

Example: bayesview train model_struct.txt samples.tsv --recode ex:1,su:1 --max-rows 6301`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.trained(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			tables, err := rt.svc.Tables(s.model, s.est)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading.Fprintf(out, "run %s (%s)\n", s.est.RunID, s.est.EstimatedAt)
			for _, vt := range tables {
				if err := printTable(out, vt, s.est.CPDs[vt.Variable], rt.cfg.Display.Precision); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newPickCmd(rt *runtime) *cobra.Command {
	var viewport string

	cmd := &cobra.Command{
		Use:   "pick [structure] [samples] [x] [y]",
		Short: "Resolve a point to the nearest variable and print its CPD",
		Long: `Train, lay out the structure and resolve (x, y) to the nearest variable.
Coordinates are in layout space unless --viewport is given, in which case they
are pixels.

Example: bayesview pick model_struct.txt samples.tsv 0.1 -0.4`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			point, err := parsePoint(args[2], args[3], viewport)
			if err != nil {
				return err
			}
			s, err := rt.trained(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if s.layout, err = rt.svc.Draw(s.model); err != nil {
				return err
			}

			focus, table, err := rt.svc.Click(s.layout, s.est, point)
			if err != nil && focus.IsZero() {
				return err
			}
			if focus.IsZero() {
				subtle.Fprintf(cmd.OutOrStdout(), "no variable within %g of (%g, %g)\n", rt.cfg.Display.PickRadius, point.X, point.Y)
				return nil
			}
			return printTable(cmd.OutOrStdout(), app.VariableTable{
				Variable: focus.Variable,
				Parents:  s.model.ParentsOf(focus.Variable),
				Table:    table,
				Err:      err,
			}, s.est.CPDs[focus.Variable], rt.cfg.Display.Precision)
		},
	}

	cmd.Flags().StringVar(&viewport, "viewport", "", "Treat x y as pixels in a WxH viewport")
	return cmd
}

func newInspectCmd(rt *runtime) *cobra.Command {
	var viewport string

	cmd := &cobra.Command{
		Use:   "inspect [structure] [samples]",
		Short: "Read click positions from stdin and print the focused CPD for each",
		Long: `Train once, then read one "x y" pair per line from stdin. Each line moves
the focus to the nearest variable and prints its table. Bad lines are
reported and skipped.

Example: printf '0 0\n0.5 0.5\n' | bayesview inspect model_struct.txt samples.tsv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.trained(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if s.layout, err = rt.svc.Draw(s.model); err != nil {
				return err
			}
			return inspect(rt, s, cmd.InOrStdin(), cmd.OutOrStdout(), viewport)
		},
	}

	cmd.Flags().StringVar(&viewport, "viewport", "", "Treat input positions as pixels in a WxH viewport")
	return cmd
}

func inspect(rt *runtime, s *session, in io.Reader, out io.Writer, viewport string) error {
	var focus app.Focus
	resolver := rt.svc.Picker(s.layout)
	scanner := bufio.NewScanner(in)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			warn.Fprintf(out, "line %d: expected \"x y\"\n", line)
			continue
		}
		point, err := parsePoint(fields[0], fields[1], viewport)
		if err != nil {
			warn.Fprintf(out, "line %d: %v\n", line, err)
			continue
		}

		next, table, err := rt.svc.ClickWith(resolver, s.est, point)
		if err != nil && next.IsZero() {
			return err
		}
		if next.IsZero() {
			subtle.Fprintf(out, "line %d: no variable within %g\n", line, rt.cfg.Display.PickRadius)
			focus = app.Focus{}
			continue
		}
		if next.Variable == focus.Variable {
			subtle.Fprintf(out, "focus unchanged: %s\n", focus.Variable)
			continue
		}
		focus = next
		if err := printTable(out, app.VariableTable{
			Variable: focus.Variable,
			Parents:  s.model.ParentsOf(focus.Variable),
			Table:    table,
			Err:      err,
		}, s.est.CPDs[focus.Variable], rt.cfg.Display.Precision); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func newDescribeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [samples]",
		Short: "Profile every sample column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, closeSource, err := rt.sampleSource(args[0])
			if err != nil {
				return err
			}
			defer closeSource()
			table, err := rt.svc.LoadSamples(cmd.Context(), source)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading.Fprintf(out, "%d rows, %d columns, samples %s\n", table.Rows(), len(table.Names()), table.Hash())
			for _, p := range samples.Profile(table) {
				counts := make([]string, len(p.States))
				for i, code := range p.States {
					counts[i] = fmt.Sprintf("%d:%d", code, p.Counts[i])
				}
				fmt.Fprintf(out, "%-12s missing=%-5d min=%-4g max=%-4g mode=%v states=[%s]\n",
					p.Name, p.Missing, p.Min, p.Max, p.Mode, strings.Join(counts, " "))
			}
			return nil
		},
	}
}

func newReportCmd(rt *runtime) *cobra.Command {
	var asHTML bool
	var output string

	cmd := &cobra.Command{
		Use:   "report [structure] [samples]",
		Short: "Write a Markdown or HTML report of every CPD table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.trained(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			tables, err := rt.svc.Tables(s.model, s.est)
			if err != nil {
				return err
			}

			sections := make([]render.Section, len(tables))
			for i, vt := range tables {
				sections[i] = render.Section{Table: vt.Table, Variable: string(vt.Variable), Err: vt.Err}
				for _, p := range vt.Parents {
					sections[i].Parents = append(sections[i].Parents, string(p))
				}
			}
			md := render.Markdown(fmt.Sprintf("CPDs for %s", args[0]), sections, rt.cfg.Display.Precision)
			doc := []byte(md)
			if asHTML {
				doc = render.HTML(md)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(doc)
				return err
			}
			return os.WriteFile(output, doc, 0o644)
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of Markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file")
	return cmd
}

func newSimulateCmd(rt *runtime) *cobra.Command {
	var rows int
	var seed int64
	var missing float64
	var structureOut string

	cmd := &cobra.Command{
		Use:   "simulate [samples-out]",
		Short: "Write synthetic samples from the built-in student network",
		Long: `Forward-sample the student network (ex, su -> gr -> le; su -> sc) into a
tab-separated file. --structure also writes its edge list.

Example: bayesview simulate samples.tsv --structure model_struct.txt --rows 6301`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, truth, err := testkit.StudentNetwork()
			if err != nil {
				return err
			}
			table, err := testkit.NewSampleGenerator(testkit.SampleGeneratorConfig{Rows: rows, Seed: seed, MissingRate: missing}).Generate(model, truth)
			if err != nil {
				return err
			}

			if structureOut != "" {
				pairs := make([]string, len(testkit.StudentEdges))
				for i, e := range testkit.StudentEdges {
					pairs[i] = fmt.Sprintf("('%s', '%s')", e[0], e[1])
				}
				if err := os.WriteFile(structureOut, []byte("["+strings.Join(pairs, ", ")+"]\n"), 0o644); err != nil {
					return err
				}
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			w := csv.NewWriter(f)
			w.Comma = '\t'
			if err := w.Write(table.Names()); err != nil {
				return err
			}
			record := make([]string, len(table.Names()))
			for r := 0; r < table.Rows(); r++ {
				for j, col := range table.Columns() {
					record[j] = ""
					if col.Observed(r) {
						record[j] = strconv.Itoa(col.Codes[r])
					}
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return err
			}
			subtle.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", table.Rows(), args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", testkit.DefaultSampleConfig().Rows, "Number of rows")
	cmd.Flags().Int64Var(&seed, "seed", testkit.DefaultSampleConfig().Seed, "Random seed")
	cmd.Flags().Float64Var(&missing, "missing", 0, "Probability that a cell is left blank")
	cmd.Flags().StringVar(&structureOut, "structure", "", "Also write the network's edge list here")
	return cmd
}

func printTable(out io.Writer, vt app.VariableTable, c *cpd.CPD, precision int) error {
	title := string(vt.Variable)
	if len(vt.Parents) > 0 {
		parents := make([]string, len(vt.Parents))
		for i, p := range vt.Parents {
			parents[i] = string(p)
		}
		title += " | " + strings.Join(parents, ", ")
	}
	heading.Fprintf(out, "\n%s\n", title)

	if vt.Err != nil {
		warn.Fprintf(out, "  %v\n", vt.Err)
		if errors.GetCode(vt.Err) != errors.CodeUnsupportedRank {
			return vt.Err
		}
		return nil
	}
	if err := render.Grid(out, vt.Table, precision); err != nil {
		return err
	}
	if c != nil && len(c.Provenance.FallbackColumns) > 0 {
		subtle.Fprintf(out, "  uniform (no rows) for columns %v\n", c.Provenance.FallbackColumns)
	}
	return nil
}

func parsePoint(xs, ys, viewport string) (r2.Vec, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return r2.Vec{}, errors.InvalidInput(fmt.Sprintf("x %q is not a number", xs))
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return r2.Vec{}, errors.InvalidInput(fmt.Sprintf("y %q is not a number", ys))
	}
	if viewport == "" {
		return r2.Vec{X: x, Y: y}, nil
	}
	vp, err := render.ParseViewport(viewport)
	if err != nil {
		return r2.Vec{}, err
	}
	return vp.ToLayout(x, y), nil
}
