package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tnp1/internal/cli"
	"github.com/calvinalkan/tnp1/internal/report"
)

func Test_Run_Prints_Usage_When_No_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "Usage: tnp1-bench")
	cli.AssertContains(t, stdout, "run [flags] [profile...]")
	cli.AssertContains(t, stdout, "profiles")
}

func Test_Run_Fails_When_Command_Unknown(t *testing.T) {
	t.Parallel()

	stderr := cli.NewCLI(t).MustFail("explode")

	cli.AssertContains(t, stderr, "error: unknown command: explode")
}

func Test_Run_Fails_When_Global_Flag_Unknown(t *testing.T) {
	t.Parallel()

	stderr := cli.NewCLI(t).MustFail("--turbo", "run")

	cli.AssertContains(t, stderr, "unknown flag: --turbo")
}

func Test_Profiles_Lists_Build_Time_Profiles(t *testing.T) {
	t.Parallel()

	stdout := cli.NewCLI(t).MustRun("profiles")
	lines := strings.Split(stdout, "\n")

	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "default"))
	assert.Contains(t, lines[1], "2147483647")
	assert.True(t, strings.HasPrefix(lines[3], "small"))
}

func Test_BenchRun_Verifies_Small_Profile_Against_Reference(t *testing.T) {
	t.Parallel()

	stdout := cli.NewCLI(t).MustRun("run", "--verify", "-n", "3", "small")
	lines := strings.Split(stdout, "\n")

	require.Len(t, lines, 4, "header plus one line per run")

	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		require.Len(t, fields, 8, line)
		assert.Equal(t, "small", fields[0])
		assert.Equal(t, "27", fields[2])
		assert.Equal(t, "111", fields[3])
		assert.Equal(t, "threshold", fields[6])
		assert.Equal(t, "ok", fields[7])
	}
}

func Test_BenchRun_Uses_Plan_File_And_Writes_Report(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".tnp1-bench.json", `{
		// two quick runs, checked
		"profiles": ["small"],
		"runs": 2,
		"verify": true,
		"out": "out/report.json",
	}`)

	stderr := c.MustFail("run")
	cli.AssertContains(t, stderr, "out/report.json")

	require.NoError(t, mkdir(c.Dir, "out"))

	stdout := c.MustRun("run")
	cli.AssertContains(t, stdout, "report: ")

	rep, err := report.ReadFile(c.Dir + "/out/report.json")
	require.NoError(t, err)
	require.Len(t, rep.Entries, 2)

	for _, e := range rep.Entries {
		require.NotNil(t, e.Verified)
		assert.True(t, *e.Verified)
		assert.Equal(t, uint64(27), e.Result.Max.N)
	}
}

func Test_BenchRun_Flags_Override_Plan(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("plan.json", `{"profiles": ["small"], "runs": 5}`)

	stdout := c.MustRun("run", "--plan", "plan.json", "--runs", "1")

	assert.Len(t, strings.Split(stdout, "\n"), 2)
}

func Test_BenchRun_Fails_When_Profile_Unknown(t *testing.T) {
	t.Parallel()

	stderr := cli.NewCLI(t).MustFail("run", "galactic")

	cli.AssertContains(t, stderr, `unknown profile: "galactic"`)
}

func Test_BenchRun_Fails_When_Log_Level_Invalid(t *testing.T) {
	t.Parallel()

	stderr := cli.NewCLI(t).MustFail("run", "--log-level", "chatty", "small")

	cli.AssertContains(t, stderr, `invalid log level "chatty"`)
}

func Test_BenchRun_Logs_To_Stderr_When_Debug_Level_From_Env(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["TNP1_LOG_LEVEL"] = "debug"

	stdout, stderr, code := c.Run("run", "small")
	require.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stderr, "chunk committed")
	cli.AssertContains(t, stderr, "profile=small")
	cli.AssertNotContains(t, stdout, "chunk committed")
}

func Test_BenchRun_Prints_Help_When_Help_Flag(t *testing.T) {
	t.Parallel()

	stdout := cli.NewCLI(t).MustRun("run", "--help")

	cli.AssertContains(t, stdout, "Usage: tnp1-bench run [flags] [profile...]")
	cli.AssertContains(t, stdout, "--verify")
	cli.AssertContains(t, stdout, "Profiles: default, medium, small.")
}
