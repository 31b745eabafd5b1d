package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net"
	"net/http"
	"strings"
	"time"
)

// LlamaServer streams from a running llama.cpp server through its native
// /completion endpoint.
type LlamaServer struct {
	baseURL    string
	apiKey     string
	params     Params
	httpClient *http.Client
}

// NewLlamaServer constructs a server-backed engine. connectTimeout bounds
// dialing only; generation is bounded by the caller's context.
func NewLlamaServer(baseURL, apiKey string, connectTimeout time.Duration, params Params) *LlamaServer {
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &LlamaServer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		params:     params,
		httpClient: &http.Client{Transport: tr},
	}
}

func (s *LlamaServer) Name() string { return "llama-server" }

func (s *LlamaServer) Available() error {
	if s.baseURL == "" {
		return ErrDependencyUnavailable("llama-server: base_url is empty")
	}
	return nil
}

// completionRequest is the payload for POST /completion.
type completionRequest struct {
	Prompt        string   `json:"prompt"`
	NPredict      int      `json:"n_predict,omitempty"`
	Temperature   float32  `json:"temperature,omitempty"`
	TopP          float32  `json:"top_p,omitempty"`
	TopK          int      `json:"top_k,omitempty"`
	Stop          []string `json:"stop,omitempty"`
	Seed          int      `json:"seed,omitempty"`
	RepeatPenalty float32  `json:"repeat_penalty,omitempty"`
	Stream        bool     `json:"stream"`
}

// completionChunk is one streamed event.
type completionChunk struct {
	Content string `json:"content"`
	Stop    bool   `json:"stop"`
}

func (s *LlamaServer) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return Accumulate(ctx, func(ctx context.Context, emit func(string) bool) error {
		body, _ := json.Marshal(completionRequest{
			Prompt:        prompt,
			NPredict:      s.params.MaxTokens,
			Temperature:   s.params.Temperature,
			TopP:          s.params.TopP,
			TopK:          s.params.TopK,
			Stop:          s.params.Stop,
			Seed:          s.params.Seed,
			RepeatPenalty: s.params.RepeatPenalty,
			Stream:        true,
		})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/completion", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.apiKey)
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return errors.New("llama-server http error: " + resp.Status + ": " + strings.TrimSpace(string(b)))
		}
		return readCompletionStream(ctx, resp.Body, emit)
	})
}

// readCompletionStream parses SSE lines ("data: {...}") and also tolerates
// bare JSON lines.
func readCompletionStream(ctx context.Context, r io.Reader, emit func(string) bool) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			data := line
			if strings.HasPrefix(strings.ToLower(line), "data:") {
				data = strings.TrimSpace(line[len("data:"):])
			}
			if data == "[DONE]" {
				return nil
			}
			var c completionChunk
			if jerr := json.Unmarshal([]byte(data), &c); jerr == nil {
				if !emit(c.Content) {
					return nil
				}
				if c.Stop {
					return nil
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}
