// Command nudl-analyze is a thin driver over the analyzer: it wires a
// canned module-store of pre-built ASTs (§1/§6: source parsing is an
// external collaborator this repo does not implement) into
// package module's driver and prints the resulting module-level names
// and diagnostics, demonstrating the engine end to end the way the
// teacher's demo/cmd command drives its transformation pipeline against
// fixture scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NunaInc/nudl-analysis/analyzerconfig"
	"github.com/NunaInc/nudl-analysis/cache"
	"github.com/NunaInc/nudl-analysis/module"
)

func runScenario(name string, cfg *analyzerconfig.Config) error {
	sc, ok := scenarios()[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}

	env := module.NewEnvironment()
	store := module.NewMemoryStore(env)
	env.Store = store
	for path, src := range sc.Modules {
		store.SetModuleCode(path, src)
	}

	var c *cache.Store
	if cfg.CacheDSN != "" {
		s, err := cache.Open(cfg.CacheDSN, cfg.Debug)
		if err != nil {
			fmt.Printf("warning: specialization cache unavailable: %v\n", err)
		} else {
			c = s
			defer c.Close()
		}
	}

	built, st := env.AnalyzeModule(sc.Entry, "", sc.Modules[sc.Entry])
	if st != nil && !st.Ok() {
		fmt.Printf("analysis failed: %s\n", st.Error())
		if built == nil {
			return nil
		}
	} else {
		fmt.Printf("ok: module %q analyzed cleanly\n", sc.Entry)
	}

	fmt.Printf("\nmodule-level names in %q:\n", sc.Entry)
	for _, n := range built.DefinedNames() {
		obj, _ := built.GetName(n)
		fmt.Printf("  - %s : %s\n", n, obj.TypeSpec())
	}

	if c != nil {
		for _, n := range built.DefinedNames() {
			obj, _ := built.GetName(n)
			ts, ok := obj.TypeSpec().(fmt.Stringer)
			if !ok {
				continue
			}
			_ = c.Record(sc.Entry, n, "", ts.String())
		}
	}
	return nil
}

func listScenarios() {
	fmt.Println("\nAvailable scenarios:")
	for name, sc := range scenarios() {
		fmt.Printf("  - %s: %s\n", name, sc.Description)
	}
	fmt.Println()
}

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "nudl-analyze",
		Short: "Drive the NuDL semantic analyzer over a canned scenario",
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "optional .env file to load before reading NUDL_* variables")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Analyze a scenario and print its module-level types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := analyzerconfig.Load(envFile)
			return runScenario(args[0], cfg)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			listScenarios()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
