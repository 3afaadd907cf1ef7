package anycrc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

const scanWorkers = 10

func (m *Manifest) checksumFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := m.crc.NewHash()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}

func (m *Manifest) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (m *Manifest) fileWorker(ctx context.Context, in <-chan string, record bool, mismatches *int64) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			sum, err := m.checksumFile(file)
			if err != nil {
				errc <- err
				return
			}

			if record {
				if err := m.db.Put(file, m.name, sum); err != nil {
					errc <- err
					return
				}
				m.logger.Printf("%s %s\n", sum, file)
				continue
			}

			want, err := m.db.Get(file, m.name)
			if err != nil {
				errc <- err
				return
			}
			switch {
			case want == "":
				m.logger.Printf("No recorded checksum for \"%s\"\n", file)
			case want != sum:
				atomic.AddInt64(mismatches, 1)
				m.logger.Printf("Checksum mismatch for \"%s\": recorded %s, computed %s\n", file, want, sum)
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (m *Manifest) run(path string, record bool) (int64, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var mismatches int64
	var errcList []<-chan error

	files, errc, err := m.findFiles(ctx, dir)
	if err != nil {
		return 0, err
	}
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errc, err := m.fileWorker(ctx, files, record, &mismatches)
		if err != nil {
			return 0, err
		}
		errcList = append(errcList, errc)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return 0, err
	}
	return atomic.LoadInt64(&mismatches), nil
}

// Scan walks path and records the checksum of every regular file in the
// manifest database.
func (m *Manifest) Scan(path string) error {
	_, err := m.run(path, true)
	return err
}

// Verify walks path, recomputes the checksum of every regular file and
// compares it with the recorded value. Files without a recorded checksum are
// reported but do not fail the verification.
func (m *Manifest) Verify(path string) error {
	mismatches, err := m.run(path, false)
	if err != nil {
		return err
	}
	if mismatches > 0 {
		return fmt.Errorf("%d file(s) failed checksum verification", mismatches)
	}
	return nil
}
