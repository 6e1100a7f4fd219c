// Package prompt 管理分类、翻译与回答生成所用的提示词模板。
// 内置模板总是可用；可选的 YAML 文件按名称覆盖它们，并在文件变化时热更新。
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"tradepersona/internal/logger"
)

// FileConfig 映射覆盖文件：
//
//	prompts:
//	  composer: |
//	    ...
type FileConfig struct {
	Prompts map[string]string `yaml:"prompts"`
}

// Snapshot 是当前模板集的元信息。
type Snapshot struct {
	Version    int64
	LoadedAt   time.Time
	Overridden []Name
}

// ChangeListener 在重载成功后被调用。
type ChangeListener func(Snapshot)

// Registry 持有编译好的模板，可并发读取。
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	templates map[Name]*template.Template
	snapshot  Snapshot
	listeners []ChangeListener
}

// Builtin 返回只包含内置模板的 Registry。
func Builtin() *Registry {
	r := &Registry{}
	tpls, err := compile(nil)
	if err != nil {
		panic(fmt.Sprintf("builtin prompts do not compile: %v", err))
	}
	r.install(tpls, nil)
	return r
}

// NewRegistry 读取覆盖文件并监听更新；path 为空时等同于 Builtin。
// 启动时文件无效直接报错，运行中重载失败则保留上一版模板。
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read prompt templates failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("prompt reload failed (%s): %v", evt.Name, err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Render 用 data 渲染指定模板。
func (r *Registry) Render(name Name, data any) (string, error) {
	r.mu.RLock()
	tpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("prompt %q not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := r.snapshot
	snap.Overridden = append([]Name(nil), r.snapshot.Overridden...)
	return snap
}

// Subscribe 注册重载监听器。
func (r *Registry) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) reload() error {
	cfg, err := readTemplateFile(r.path)
	if err != nil {
		return err
	}
	tpls, err := compile(cfg.Prompts)
	if err != nil {
		return err
	}
	overridden := make([]Name, 0, len(cfg.Prompts))
	for _, name := range Names {
		if _, ok := cfg.Prompts[string(name)]; ok {
			overridden = append(overridden, name)
		}
	}
	r.install(tpls, overridden)
	logger.Infof("prompt registry loaded %d override(s) from %s", len(overridden), filepath.Base(r.path))
	return nil
}

func (r *Registry) install(tpls map[Name]*template.Template, overridden []Name) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = tpls
	r.snapshot = Snapshot{
		Version:    r.snapshot.Version + 1,
		LoadedAt:   time.Now(),
		Overridden: overridden,
	}
}

func (r *Registry) notifyListeners() {
	snap := r.Snapshot()
	r.mu.RLock()
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Errorf("prompt listener panic: %v", rec)
				}
			}()
			cb(snap)
		}(fn)
	}
}

// compile 以内置模板为底，叠加 overrides 后全部编译。
func compile(overrides map[string]string) (map[Name]*template.Template, error) {
	known := make(map[string]bool, len(Names))
	for _, name := range Names {
		known[string(name)] = true
	}
	for key := range overrides {
		if !known[key] {
			return nil, fmt.Errorf("unknown prompt %q", key)
		}
	}
	out := make(map[Name]*template.Template, len(Names))
	for _, name := range Names {
		text := builtin[name]
		if override, ok := overrides[string(name)]; ok {
			if strings.TrimSpace(override) == "" {
				return nil, fmt.Errorf("prompt %q override is empty", name)
			}
			text = override
		}
		tpl, err := template.New(string(name)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", name, err)
		}
		out[name] = tpl
	}
	return out, nil
}

func readTemplateFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read prompt templates failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse prompt templates failed: %w", err)
	}
	return cfg, nil
}
