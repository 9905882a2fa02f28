package install

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/digest"
)

// Check verifies each installed package's manifest against prefix,
// printing one line per discrepancy and returning the number found.
// A missing path is reported as "does not exist"; a non-backup file
// whose digest no longer matches the recorded one is reported as a
// checksum difference. Backup-listed files are expected to diverge
// and are not checked (§4.8).
func (e *Engine) Check(d db.DB, names []string) (int, error) {
	problems := 0
	for _, name := range names {
		pkg, ok := d[name]
		if !ok {
			log.Printf("%s: not installed", name)
			problems++
			continue
		}

		backupSet := make(map[string]bool, len(pkg.Backup))
		for _, b := range pkg.Backup {
			backupSet[b] = true
		}

		paths := sortedKeys(pkg.MD5Sums)
		for _, p := range paths {
			target := filepath.Join(e.Prefix, filepath.FromSlash(p))
			sum := pkg.MD5Sums[p]
			info, err := os.Stat(target)
			if os.IsNotExist(err) {
				log.Printf("%s: %s does not exist", name, target)
				problems++
				continue
			}
			if err != nil {
				return problems, err
			}
			if sum == nil {
				if !info.IsDir() {
					log.Printf("%s: %s is not a directory", name, target)
					problems++
				}
				continue
			}
			if backupSet[p] {
				continue
			}
			current, err := digest.MD5File(target)
			if err != nil {
				return problems, err
			}
			if current != *sum {
				log.Printf("%s: %s checksum difference", name, target)
				problems++
			}
		}
	}
	return problems, nil
}
