package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tnp1/internal/search"
)

// ProfilesCmd returns the profiles command.
func ProfilesCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("profiles", flag.ContinueOnError),
		Usage: "profiles",
		Short: "List build-time search profiles",
		Long:  "List the search profiles compiled into this binary and their tunables.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			o.Printf("%-8s %10s %8s %10s %12s\n", "profile", "stop", "workers", "chunk", "cache")

			for _, name := range search.ProfileNames() {
				p, err := search.Profile(name)
				if err != nil {
					return err
				}

				o.Printf("%-8s %10d %8d %10d %12d\n", name, p.StopAfter, p.Workers, p.ChunkSize, p.CacheSize)
			}

			return nil
		},
	}
}
