package output

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
)

type FileWriter struct {
	fullPath string
}

func NewFileWriter(url *url.URL, options *Options) *FileWriter {
	var fullPath string

	if options.OutputFile == "" {
		fullPath = fmt.Sprintf("./%s", filepath.Base(url.Path))
	} else {
		fullPath = options.OutputFile
	}

	if !options.Overwrite {
		fullPath = makeNonOverlappingFilename(fullPath)
	}

	return &FileWriter{
		fullPath: fullPath,
	}
}

func makeNonOverlappingFilename(path string) string {
	_, err := os.Stat(path)
	if err == nil {
		re := regexp.MustCompile(`\.(\d+)$`)
		newPath := re.ReplaceAllStringFunc(path, func(index string) string {
			i, err := strconv.Atoi(strings.TrimPrefix(index, "."))
			if err != nil {
				panic(err)
			}
			i++
			return fmt.Sprintf(".%d", i)
		})
		if path == newPath {
			path = fmt.Sprintf("%s.%d", path, 1)
		} else {
			path = newPath
		}
		path = makeNonOverlappingFilename(path)
	}
	return path
}

// Download streams body to the file, printing progress to stderr as it
// goes. contentLength <= 0 means unknown (chunked), in which case
// progress is reported as bytes transferred rather than a percentage.
func (f *FileWriter) Download(body io.Reader, contentLength int64) error {
	file, err := os.Create(f.fullPath)
	if err != nil {
		return errors.Wrapf(err, "creating output file %s", f.fullPath)
	}
	defer file.Close()

	buf := make([]byte, 32*1024)
	var totalRead int64

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return errors.Wrap(err, "writing downloaded content to file")
			}
			totalRead += int64(n)
			f.printProgress(totalRead, contentLength)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fmt.Fprintln(os.Stderr)
			return errors.Wrap(readErr, "reading response body")
		}
	}

	fmt.Fprintln(os.Stderr)
	return nil
}

func (f *FileWriter) printProgress(totalRead, contentLength int64) {
	if contentLength > 0 {
		percentage := (totalRead * 100) / contentLength
		fmt.Fprintf(os.Stderr, "\rDownloading %s: %s / %s (%d%%)",
			f.Filename(), bytefmt.ByteSize(uint64(totalRead)), bytefmt.ByteSize(uint64(contentLength)), percentage)
	} else {
		fmt.Fprintf(os.Stderr, "\rDownloading %s: %s", f.Filename(), bytefmt.ByteSize(uint64(totalRead)))
	}
}

func (f *FileWriter) Filename() string {
	return filepath.Base(f.fullPath)
}
