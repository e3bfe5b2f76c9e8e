package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ujos/simple-binary-encoding/internal/ir"
	"github.com/ujos/simple-binary-encoding/internal/registry"
)

// RegistryEntry mirrors registry.Entry for JSON output.
type RegistryEntry struct {
	SchemaID  int64  `json:"schemaId"`
	Version   int64  `json:"version"`
	Package   string `json:"package"`
	Namespace string `json:"namespace,omitempty"`
	StoredAt  string `json:"storedAt"`
}

// NewRegistryCommand creates the registry command group.
func NewRegistryCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the schema registry",
		Long: `Store, retrieve and list token IR documents in a local registry
database. Schemas are keyed by (schema id, version); pushing the same
document twice is idempotent.`,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "schemas.db", "registry database path")

	cmd.AddCommand(newRegistryPushCommand(rootOpts, &dbPath))
	cmd.AddCommand(newRegistryPullCommand(rootOpts, &dbPath))
	cmd.AddCommand(newRegistryListCommand(rootOpts, &dbPath))

	return cmd
}

func newRegistryPushCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "push <ir-file>",
		Short:         "Store a schema document in the registry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			traceID := uuid.NewString()

			doc, err := LoadIr(args[0])
			if err != nil {
				return reportLoadError(formatter, traceID, err)
			}

			r, err := registry.Open(*dbPath)
			if err != nil {
				return reportRegistryError(formatter, traceID, err)
			}
			defer r.Close()

			if err := r.Put(cmd.Context(), doc); err != nil {
				return reportRegistryError(formatter, traceID, err)
			}

			if rootOpts.Format == "json" {
				return formatter.Success(traceID, RegistryEntry{
					SchemaID: doc.ID, Version: doc.Version, Package: doc.Package, Namespace: doc.Namespace,
				})
			}
			return formatter.Success(traceID, fmt.Sprintf("stored schema %d version %d", doc.ID, doc.Version))
		},
	}
}

func newRegistryPullCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	var (
		schemaID int64
		version  int64
		outPath  string
	)

	cmd := &cobra.Command{
		Use:           "pull",
		Short:         "Retrieve a schema document from the registry",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			traceID := uuid.NewString()

			r, err := registry.Open(*dbPath)
			if err != nil {
				return reportRegistryError(formatter, traceID, err)
			}
			defer r.Close()

			var doc *ir.Ir
			if version > 0 {
				doc, err = r.Get(cmd.Context(), schemaID, version)
			} else {
				doc, err = r.Latest(cmd.Context(), schemaID)
			}
			if err != nil {
				return reportRegistryError(formatter, traceID, err)
			}

			data, err := ir.Marshal(doc)
			if err != nil {
				return reportRegistryError(formatter, traceID, err)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					msg := fmt.Sprintf("error writing %s: %v", outPath, err)
					if outErr := formatter.Error(traceID, ErrCodeReadFailed, msg, nil); outErr != nil {
						return outErr
					}
					return NewExitError(ExitCommandError, msg)
				}
				return formatter.Success(traceID, fmt.Sprintf("wrote schema %d version %d to %s",
					doc.ID, doc.Version, outPath))
			}

			// Canonical JSON already ends with a newline.
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().Int64Var(&schemaID, "schema-id", 0, "schema id to retrieve")
	cmd.Flags().Int64Var(&version, "version", 0, "schema version (default: latest)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the document to a file")
	_ = cmd.MarkFlagRequired("schema-id")

	return cmd
}

func newRegistryListCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored schemas",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			traceID := uuid.NewString()

			r, err := registry.Open(*dbPath)
			if err != nil {
				return reportRegistryError(formatter, traceID, err)
			}
			defer r.Close()

			entries, err := r.List(cmd.Context())
			if err != nil {
				return reportRegistryError(formatter, traceID, err)
			}

			if rootOpts.Format == "json" {
				out := make([]RegistryEntry, 0, len(entries))
				for _, e := range entries {
					out = append(out, RegistryEntry{
						SchemaID: e.SchemaID, Version: e.Version,
						Package: e.Package, Namespace: e.Namespace, StoredAt: e.StoredAt,
					})
				}
				return formatter.Success(traceID, out)
			}

			if len(entries) == 0 {
				return formatter.Success(traceID, "registry is empty")
			}
			var b strings.Builder
			for _, e := range entries {
				fmt.Fprintf(&b, "schema %d version %d (%s) stored %s\n", e.SchemaID, e.Version, e.Package, e.StoredAt)
			}
			return formatter.Success(traceID, strings.TrimRight(b.String(), "\n"))
		},
	}
}

func newFormatter(rootOpts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
}

func reportRegistryError(formatter *OutputFormatter, traceID string, err error) error {
	if outErr := formatter.Error(traceID, ErrCodeRegistry, err.Error(), nil); outErr != nil {
		return outErr
	}
	code := ExitFailure
	if errors.Is(err, registry.ErrNotFound) {
		code = ExitCommandError
	}
	return WrapExitError(code, "registry operation failed", err)
}
