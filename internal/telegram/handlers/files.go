package handlers

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const downloadTimeout = 30 * time.Second

var ErrFileTooLarge = errors.New("file too large")

// TelegramFiles downloads files from the Bot API file storage
type TelegramFiles struct {
	bot     *tgbotapi.BotAPI
	maxSize int64
	client  *http.Client
}

func NewTelegramFiles(bot *tgbotapi.BotAPI, maxSize int64) *TelegramFiles {
	return &TelegramFiles{
		bot:     bot,
		maxSize: maxSize,
		client: &http.Client{
			Timeout: downloadTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
	}
}

func (f *TelegramFiles) Download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := f.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file info: %w", err)
	}

	if int64(file.FileSize) > f.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, file.FileSize, f.maxSize)
	}

	fileURL := file.Link(f.bot.Token)
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return nil, fmt.Errorf("invalid file URL: %w", err)
	}
	if parsed.Scheme != "https" {
		return nil, fmt.Errorf("insecure URL scheme: %s (expected https)", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file data: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, f.maxSize)
	}

	return data, nil
}

// ConvertToWAV converts a voice note (OGG/Opus) to 16 kHz mono WAV with ffmpeg
func ConvertToWAV(ctx context.Context, input []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "wav",
		"-ar", "16000",
		"-ac", "1",
		"pipe:1",
	)

	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("ffmpeg convert to wav: %w, stderr: %s", err, stderr.String())
		}
		return nil, fmt.Errorf("ffmpeg convert to wav: %w", err)
	}

	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg convert to wav: empty output")
	}

	return stdout.Bytes(), nil
}
