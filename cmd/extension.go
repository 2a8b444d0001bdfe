package cmd

import (
	"errors"
	"os"
	"os/exec"
	"strconv"

	"github.com/etnz/rentroll"
	"github.com/sirupsen/logrus"
)

// ExtensionPrefix starts the name of every external subcommand binary:
// "rentroll foo" runs "rentroll-foo" when foo is not a built-in command.
const ExtensionPrefix = "rentroll-"

// Global flags are passed to extensions as environment variables.
const (
	EnvInputDir   = "RENTROLL_INPUT"
	EnvSQLiteFile = "RENTROLL_SQLITE"
	EnvConfigFile = "RENTROLL_CONFIG"
	EnvVerbose    = "RENTROLL_VERBOSE"
)

// extensionEnv is the environment of an extension process.
func extensionEnv() []string {
	return append(os.Environ(),
		EnvInputDir+"="+*inputDir,
		EnvSQLiteFile+"="+*sqliteFile,
		EnvConfigFile+"="+*configFile,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)
}

// RunExtension runs the rentroll-<subcommand> binary found in PATH with args and the
// standard streams. found is false when there is no such binary; otherwise code is the
// extension exit code, or ExitFail when it could not be started.
func RunExtension(subcommand string, args []string) (found bool, code int) {
	log := rentroll.Log.WithField("extension", ExtensionPrefix+subcommand)
	path, err := exec.LookPath(ExtensionPrefix + subcommand)
	if err != nil {
		log.WithError(err).Debug("no extension in PATH")
		return false, 0
	}

	ext := exec.Command(path, args...)
	ext.Stdin, ext.Stdout, ext.Stderr = os.Stdin, os.Stdout, os.Stderr
	ext.Env = extensionEnv()

	err = ext.Run()
	var exit *exec.ExitError
	switch {
	case err == nil:
		return true, int(ExitOK)
	case errors.As(err, &exit):
		return true, exit.ExitCode()
	default:
		log.WithFields(logrus.Fields{"path": path, "error": err}).Error("could not run extension")
		return true, int(ExitFail)
	}
}
