package acetape

import (
	"fmt"
	"io"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Reporter prints one line per recovered record, the way a tape catalogue would.
type Reporter struct {
	w               io.Writer
	timestampFormat string // strftime pattern, empty for none
	hex             bool
	now             func() time.Time
	count           int
}

func NewReporter(w io.Writer, timestampFormat string, hex bool) (*Reporter, error) {
	if timestampFormat != "" {
		if _, err := strftime.New(timestampFormat); err != nil {
			return nil, &ConfigError{Field: "timestamp format", Value: timestampFormat, Reason: err.Error()}
		}
	}

	return &Reporter{
		w:               w,
		timestampFormat: timestampFormat,
		hex:             hex,
		now:             time.Now,
	}, nil
}

func (r *Reporter) timestampPrefix() string {
	if r.timestampFormat != "" {
		var formattedTime, _ = strftime.Format(r.timestampFormat, r.now())
		return formattedTime + " "
	}

	return ""
}

func (r *Reporter) Record(rec Record) {
	r.count++

	var status = "ok"
	if !rec.Complete() {
		status = fmt.Sprintf("short, %d of %d bytes", rec.Captured, len(rec.Data))
	}

	fmt.Fprintf(r.w, "%s[%d] %-5s %-10q %5d bytes, %s\n",
		r.timestampPrefix(), r.count, FileTypeName(FileType(rec.Header)), FileName(rec.Header),
		max(len(rec.Data)-2, 0), status)

	if r.hex {
		hexDump(r.w, rec.Header)
		hexDump(r.w, rec.Data[:rec.Captured])
	}
}

// Summary is the final line, the same shape as the per-record ones.
func (r *Reporter) Summary(rejected int, elapsed time.Duration) {
	fmt.Fprintf(r.w, "%s%d records recovered, %d rejected, in %.3f seconds\n",
		r.timestampPrefix(), r.count, rejected, elapsed.Seconds())
}
