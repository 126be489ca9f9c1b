package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpeg reports the ffmpeg binary uploads will be transcoded with.
//
// An absolute or relative path is checked directly; a bare name is resolved
// from PATH the same way exec.Command would resolve it at transcode time.
func CheckFFmpeg(binary string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Transcodes uploaded audio to 16 kHz mono WAV",
	}

	command := strings.TrimSpace(binary)
	if command == "" {
		command = "ffmpeg"
	}
	result.Command = command

	if strings.ContainsRune(command, filepath.Separator) {
		info, err := os.Stat(command)
		if err != nil {
			result.Detail = fmt.Sprintf("binary %q not found", command)
			return result
		}
		if !isExecutable(info) {
			result.Detail = fmt.Sprintf("binary %q is not executable", command)
			return result
		}
		result.Available = true
		return result
	}

	resolved, err := exec.LookPath(command)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found", command)
		return result
	}
	result.Command = resolved
	result.Available = true
	return result
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
