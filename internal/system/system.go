package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// InitResourceLimits raises the open file limit. Directory galleries keep
// many image files open while the loader runs.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

var (
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
	audioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}
)

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// findLatest returns the most recently modified entry of dir accepted by match.
func findLatest(dir string, match func(os.DirEntry) bool) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if !match(f) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", os.ErrNotExist
	}
	return latestFile, nil
}

func FindLatestPDF(dir string) (string, error) {
	path, err := findLatest(dir, func(f os.DirEntry) bool {
		return !f.IsDir() && hasExtension(f.Name(), []string{".pdf"})
	})
	if err != nil {
		return "", fmt.Errorf("в папке %s не найдено PDF-файлов: %w", dir, err)
	}
	return path, nil
}

func FindLatestAudio(dir string) (string, error) {
	path, err := findLatest(dir, func(f os.DirEntry) bool {
		return !f.IsDir() && hasExtension(f.Name(), audioExtensions)
	})
	if err != nil {
		return "", fmt.Errorf("в папке %s не найдено аудио-файлов: %w", dir, err)
	}
	return path, nil
}

// FindLatestImage returns the newest image next to path (or inside it, for
// a directory).
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	searchDir := path
	if !fi.IsDir() {
		searchDir = filepath.Dir(path)
	}

	latest, err := findLatest(searchDir, func(f os.DirEntry) bool {
		return !f.IsDir() && hasExtension(f.Name(), imageExtensions)
	})
	if err != nil {
		return "", fmt.Errorf("в папке %s не найдено изображений: %w", searchDir, err)
	}
	return latest, nil
}

// FindGalleryInput picks the default gallery: dir itself when it holds
// images, else its newest subdirectory with images, else its newest PDF.
func FindGalleryInput(dir string) (string, error) {
	if _, err := FindLatestImage(dir); err == nil {
		return dir, nil
	}

	sub, err := findLatest(dir, func(f os.DirEntry) bool {
		if !f.IsDir() {
			return false
		}
		_, err := FindLatestImage(filepath.Join(dir, f.Name()))
		return err == nil
	})
	if err == nil {
		return sub, nil
	}

	if pdf, err := FindLatestPDF(dir); err == nil {
		return pdf, nil
	}
	return "", fmt.Errorf("в папке %s нет изображений и PDF", dir)
}

func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// GetBestH264Encoder prefers hardware encoders: VideoToolbox on macOS, then
// NVENC, then libx264.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}
