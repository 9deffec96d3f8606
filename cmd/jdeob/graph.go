package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	lrender "github.com/zboralski/lattice/render"
	"golang.org/x/sync/errgroup"

	"jdeob/internal/callgraph"
	"jdeob/internal/output"
	"jdeob/internal/render"
)

func cmdGraph(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	c := addCommon(fs)
	outDir := fs.String("out", "", "output directory (default from config, else ./out)")
	jobs := fs.Int("jobs", 0, "parallel method builds (default from config, else NumCPU)")
	appOnly := fs.Bool("app", false, "leave JDK callees out of the call graph")
	fs.Parse(args)

	cf, err := c.setup()
	if err != nil {
		return err
	}
	if *outDir == "" {
		*outDir = c.cfg.Out
	}
	if *jobs < 1 {
		*jobs = c.cfg.Jobs
	}

	// Methods are independent: each build touches only its own code, and
	// a failing method is recorded without cancelling the others.
	list := cf.Methods.List()
	infos := make([]callgraph.MethodInfo, len(list))
	errs := make([]error, len(list))
	g := new(errgroup.Group)
	g.SetLimit(*jobs)
	for i, m := range list {
		g.Go(func() error {
			infos[i], errs[i] = callgraph.CollectMethod(cf, m)
			if errs[i] != nil {
				log.Errorf("%v", errs[i])
				return nil
			}
			if infos[i].Graph == nil {
				return nil
			}
			dot := render.InsnDOT(infos[i].Name, infos[i].Graph, cf.Pool.Describe, render.NASA)
			path, err := output.WriteDOT(*outDir, output.FileName(infos[i].Name), dot)
			if err != nil {
				errs[i] = err
				return nil
			}
			log.Debugf("wrote %s", path)
			return nil
		})
	}
	_ = g.Wait()

	idx := &output.Index{Class: cf.Name(), Major: cf.Major, Minor: cf.Minor}
	for _, d := range cf.Diags.Items() {
		idx.Diags = append(idx.Diags, d.String())
	}
	var ok []callgraph.MethodInfo
	failed := 0
	for i, m := range list {
		e := output.MethodEntry{
			Name:       m.Name(),
			Descriptor: m.Descriptor().String(),
			Access:     m.AccessFlags(),
		}
		if errs[i] != nil {
			e.Error = errs[i].Error()
			failed++
		} else {
			ok = append(ok, infos[i])
			if gr := infos[i].Graph; gr != nil {
				e.Instructions = gr.Len()
				e.Edges = gr.NumEdges()
				e.Calls = len(infos[i].Calls)
				e.File = filepath.Join("dot", output.FileName(infos[i].Name)+".dot")
			}
		}
		idx.Methods = append(idx.Methods, e)
	}

	keep := func(string) bool { return true }
	if *appOnly {
		keep = callgraph.IsApplication
	}
	cfgPath, err := output.WriteDOT(*outDir, "cfg", lrender.DOTCFG(callgraph.BuildCFG(ok), cf.Name()+" CFG"))
	if err != nil {
		return err
	}
	cgPath, err := output.WriteDOT(*outDir, "callgraph", lrender.DOT(callgraph.BuildCallGraph(ok, keep), cf.Name()+" call graph"))
	if err != nil {
		return err
	}
	if err := output.WriteIndexJSON(*outDir, idx); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d methods, %d failed\n", len(list), failed)
	fmt.Fprintf(w, "%s\n%s\n%s\n", cfgPath, cgPath, filepath.Join(*outDir, "index.json"))
	if failed > 0 {
		log.Warningf("%d of %d methods failed; see index.json", failed, len(list))
	}
	return nil
}
