package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

var processCmd = &cobra.Command{
	Use:   "process <order.json>",
	Short: "Run one order through the pipeline",
	Long: `Reads an order request from a JSON file ("-" for stdin), runs it through
the pipeline and prints the committed order id and total.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("channel", "", "confirmation channel (overrides notification.channel)")
}

type processOutput struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
	Error   string `json:"error,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	req, err := readOrderRequest(args[0])
	if err != nil {
		return err
	}

	svc, err := buildService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	channel, _ := cmd.Flags().GetString("channel")
	if channel == "" {
		channel = svc.pipeline.Channel()
	}

	result, procErr := svc.pipeline.ProcessOn(cmd.Context(), channel, req)

	out := processOutput{}
	if result.OrderID != "" {
		out.OrderID = result.OrderID.String()
		out.Total = result.Total.StringFixed(2)
	}
	if procErr != nil {
		out.Error = procErr.Error()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	return procErr
}

func readOrderRequest(path string) (domain.OrderRequest, error) {
	var req domain.OrderRequest

	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return req, fmt.Errorf("reading order: %w", err)
		}
		defer f.Close()
	}

	if err := json.NewDecoder(f).Decode(&req); err != nil {
		return req, fmt.Errorf("decoding order %s: %w", path, err)
	}
	return req, nil
}
