package watch

import (
	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/host"
)

// RootsFor returns the source trees of every group in cfg: the basedir and,
// when per_host applies, its host-specific variant. Each root carries the
// group's ignore patterns.
func RootsFor(cfg *config.Config, hostname string) []Root {
	var roots []Root
	for _, g := range cfg.Groups {
		eff := config.Resolve(cfg.Global, g)
		if eff.PerHost {
			roots = append(roots, Root{
				Dir:    g.Basedir + host.Suffix(eff.HostnameSep, hostname),
				Ignore: g.Ignored,
			})
		}
		roots = append(roots, Root{Dir: g.Basedir, Ignore: g.Ignored})
	}
	return roots
}
