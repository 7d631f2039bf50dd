package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/productionplan/core/productionplan"
	"github.com/kilianp07/productionplan/infra/logger"
)

var payloadPath string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the production plan of a payload file",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&payloadPath, "file", "f", "-", "payload file, - for stdin")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	in := cmd.InOrStdin()
	if payloadPath != "-" {
		f, err := os.Open(payloadPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	out, err := calculate(in, productionplan.NewEngine(cfg.Plant.Tables(), logger.New("engine")))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func calculate(r io.Reader, engine *productionplan.Engine) (productionplan.Response, error) {
	var req productionplan.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", productionplan.ErrInvalidPayload, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res, err := engine.Calculate(req)
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}
