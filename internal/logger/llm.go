package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	llmMu          sync.Mutex
	llmLog         *log.Logger
	llmDumpPayload bool
)

func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

type llmSection struct {
	Title string
	Body  string
}

func logLLM(kind, provider, purpose string, sections []llmSection) {
	llmMu.Lock()
	logger := llmLog
	llmMu.Unlock()
	if logger == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM]")
	if kind != "" {
		b.WriteString("[")
		b.WriteString(kind)
		b.WriteString("]")
	}
	if provider != "" {
		b.WriteString("[")
		b.WriteString(provider)
		b.WriteString("]")
	}
	if purpose != "" {
		b.WriteString("[")
		b.WriteString(purpose)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		body := sec.Body
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	logger.Print(b.String())
}

// LogLLMRequest 记录一次模型请求；purpose 区分 classify / translate-filter / translate-aggregate / compose。
func LogLLMRequest(provider, purpose, traceID, systemPrompt, userPrompt, payload string) {
	sections := []llmSection{
		{Title: "SYSTEM", Body: systemPrompt},
		{Title: "USER", Body: userPrompt},
	}
	if traceID != "" {
		sections = append([]llmSection{{Title: "TRACE", Body: traceID}}, sections...)
	}
	llmMu.Lock()
	dump := llmDumpPayload
	llmMu.Unlock()
	if dump && strings.TrimSpace(payload) != "" {
		sections = append(sections, llmSection{Title: "PAYLOAD", Body: payload})
	}
	logLLM("request", provider, purpose, sections)
}

func LogLLMResponse(provider, purpose, traceID, raw string, err error) {
	sections := []llmSection{{Title: "RAW", Body: raw}}
	if err != nil {
		sections = append(sections, llmSection{Title: "ERROR", Body: err.Error()})
	}
	if traceID != "" {
		sections = append([]llmSection{{Title: "TRACE", Body: traceID}}, sections...)
	}
	logLLM("response", provider, purpose, sections)
}

// SetupLLMFile 打开独立的 LLM 对话日志文件。
func SetupLLMFile(path string) (io.Closer, error) {
	f, err := openAppend(path)
	if err != nil || f == nil {
		return nil, err
	}
	SetLLMWriter(f)
	return f, nil
}

func EnableLLMPayloadDump(enabled bool) {
	llmMu.Lock()
	llmDumpPayload = enabled
	llmMu.Unlock()
}
