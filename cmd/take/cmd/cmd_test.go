package cmd

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/inconshreveable/log15"
	"github.com/jarcoal/httpmock"
	"github.com/mmcloughlin/take/check"
	"github.com/mmcloughlin/take/debug"
	"github.com/mmcloughlin/take/log"
	"github.com/mmcloughlin/take/telemetry"
	"github.com/mmcloughlin/take/tordir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

var relays = []string{
	"testdata/relay1.txt",
	"testdata/relay2.txt",
	"testdata/relay3.txt",
}

const published = " published=2024-01-02 03:04:05 fingerprint=9695DFC35FFEB861329B9F1AB04C46397020CE31\n"

// ExecuteArgs runs the command line with flags reset, and returns its
// output.
func ExecuteArgs(args ...string) (string, error) {
	descriptor = false
	checkAddrs = nil
	dump = false
	authorities.public = false
	authorities.addrs = nil

	buf := bytes.NewBuffer(nil)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--log-level", "crit"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func Run(t *testing.T, args ...string) string {
	out, err := ExecuteArgs(args...)
	require.NoError(t, err)
	return out
}

func ParseDocument(_ string, b []byte) (int, error) {
	d, err := tordir.Parse(b)
	if err != nil {
		return 0, err
	}
	return len(d.Items()), nil
}

func NewTestRunner(scope tally.Scope) *runner {
	l := log.NewDiscard()
	return &runner{
		log:     l,
		metrics: telemetry.NewMetrics(scope, l),
	}
}

func TestTorrcCommand(t *testing.T) {
	out := Run(t, "torrc", "../../../torconfig/testdata/torrc")
	assert.Contains(t, out, "nickname: JetpacksPlease\n")
	assert.Contains(t, out, "address: 12.34.56.78\n")
	assert.Contains(t, out, "orport: :9001\n")
	assert.Contains(t, out, "bandwidth: 102400/26843545600\n")
}

func TestProtoverCommand(t *testing.T) {
	out := Run(t, "protover", "Link=1-4 Cons=1")
	assert.Equal(t, "Cons=1 Link=1-4\n", out)
}

func TestDocCommand(t *testing.T) {
	out := Run(t, append([]string{"doc"}, relays...)...)
	for _, relay := range relays {
		assert.Contains(t, out, relay+": 10 items\n")
	}
	assert.Equal(t, len(relays), strings.Count(out, "\n"))
}

func TestDocCommandDescriptor(t *testing.T) {
	out := Run(t, append([]string{"doc", "--descriptor"}, relays...)...)
	assert.Contains(t, out, "testdata/relay1.txt: alpha 10.0.0.1:9001"+published)
	assert.Contains(t, out, "testdata/relay2.txt: bravo 10.0.0.2:9001"+published)
	assert.Contains(t, out, "testdata/relay3.txt: charlie 10.0.0.3:9001"+published)
}

func TestDocCommandFailure(t *testing.T) {
	_, err := ExecuteArgs("doc", "testdata/relay1.txt", "testdata/bad.txt")
	require.Error(t, err)
	assert.True(t, check.Is(err, tordir.ErrParseBadKeyword))
	assert.Contains(t, err.Error(), "testdata/bad.txt")
}

func TestExitPolicyCommand(t *testing.T) {
	out := Run(t, "exitpolicy", "testdata/policy.txt")
	expect := "reject 10.0.0.0/8:*\naccept *:80\naccept *:443\nreject *:*\naccept *:*\n"
	assert.Equal(t, expect, out)
}

func TestExitPolicyCommandCheck(t *testing.T) {
	out := Run(t, "exitpolicy", "testdata/policy.txt",
		"--check", "10.1.2.3:80",
		"--check", "8.8.8.8:443",
		"--check", "8.8.8.8:25",
	)
	assert.Equal(t, "reject 10.1.2.3:80\naccept 8.8.8.8:443\nreject 8.8.8.8:25\n", out)
}

func TestExitPolicyCommandBadCheck(t *testing.T) {
	_, err := ExecuteArgs("exitpolicy", "testdata/policy.txt", "--check", "nowhere:80")
	assert.Error(t, err)
}

func TestFetchCommand(t *testing.T) {
	body, err := os.ReadFile("testdata/relay2.txt")
	require.NoError(t, err)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodGet, "http://127.0.0.1:7000"+tordir.AuthorityDescriptorPath,
		httpmock.NewBytesResponder(200, body))
	httpmock.RegisterResponder(http.MethodGet, "http://127.0.0.1:7001"+tordir.AuthorityDescriptorPath,
		httpmock.NewStringResponder(503, "busy"))

	out := Run(t, "fetch", "--authorities", "127.0.0.1:7000")
	assert.Equal(t, "127.0.0.1:7000: bravo 10.0.0.2:9001"+published, out)

	out, err = ExecuteArgs("fetch", "--authorities", "127.0.0.1:7001,127.0.0.1:7000")
	assert.Equal(t, tordir.ErrFetchBadStatus, err)
	assert.Equal(t, "127.0.0.1:7000: bravo 10.0.0.2:9001"+published, out)
}

func TestRunnerFiles(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	r := NewTestRunner(scope)

	err := r.Files([]string{relays[0], "testdata/bad.txt", relays[1]}, ParseDocument)
	require.Error(t, err)
	assert.True(t, check.Is(err, tordir.ErrParseBadKeyword))
	assert.True(t, strings.HasPrefix(err.Error(), "testdata/bad.txt: "))

	counters := scope.Snapshot().Counters()
	assert.Equal(t, int64(3), counters["inputs+"].Value())
	assert.Equal(t, int64(1), counters["failures+"].Value())
	assert.Equal(t, int64(20), counters["items+"].Value())
	assert.Equal(t, int64(0), r.metrics.InFlight.Current())
}

func TestRunnerFilesMissing(t *testing.T) {
	r := NewTestRunner(tally.NoopScope)
	err := r.Files([]string{relays[0], "testdata/doesnotexist"}, ParseDocument)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "testdata/doesnotexist")
}

func TestRunnerLogsFailingInput(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	base := log15.New()
	base.SetHandler(log15.StreamHandler(buf, log15.LogfmtFormat()))

	r := NewTestRunner(tally.NoopScope)
	r.log = log.NewLog15(base)
	err := r.Bytes("in", []byte{0xca, 0xfe}, ParseDocument)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "lvl=dbug")
	assert.Contains(t, out, "input=in data=cafe")
	assert.Contains(t, out, "lvl=eror")
}

func TestRunnerDump(t *testing.T) {
	bad, err := os.ReadFile("testdata/bad.txt")
	require.NoError(t, err)

	one := bytes.NewBuffer(nil)
	require.NoError(t, debug.DumpBytes(one, "testdata/bad.txt", bad))
	one.WriteString(debug.GoStringByteArray(bad) + "\n")

	// Dumps of concurrent failures must not interleave.
	const n = 16
	filenames := make([]string, n)
	for i := range filenames {
		filenames[i] = "testdata/bad.txt"
	}

	buf := bytes.NewBuffer(nil)
	r := NewTestRunner(tally.NoopScope)
	r.dump = buf
	require.Error(t, r.Files(filenames, ParseDocument))
	assert.Equal(t, strings.Repeat(one.String(), n), buf.String())
}

func TestRunnerNoDumpOnSuccess(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	r := NewTestRunner(tally.NoopScope)
	r.dump = buf
	require.NoError(t, r.Files(relays, ParseDocument))
	assert.Empty(t, buf.String())
}

func TestDescribeHTTP(t *testing.T) {
	cases := []struct {
		Name   string
		Input  string
		Expect string
	}{
		{
			Name:   "request",
			Input:  "GET /tor/server/authority HTTP/1.0\r\nHost: example.com\r\n\r\n",
			Expect: "request: GET /tor/server/authority HTTP/1.0 fields=1 body=0\n",
		},
		{
			Name:   "response",
			Input:  "HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\nbody",
			Expect: "response: HTTP/1.1 200 \"OK\" fields=1 body=4\n",
		},
	}
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			n, err := describeHTTP(buf, c.Name, []byte(c.Input))
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Equal(t, c.Expect, buf.String())
		})
	}
}

func TestPrintVersion(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	printVersion(buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "unknown", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "take unknown on "))
}
