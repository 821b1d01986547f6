package fonts

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File 是仓库中的一个字体文件，按规范化路径去重。
type File struct {
	Path string
	Data []byte

	refs int
}

// Spec 是一种字体用途（名称 + 字号）对字体文件的引用。
type Spec struct {
	Name string
	Size float64 // pt
	File *File

	store *Store
}

// Release 归还 Spec 持有的文件引用；重复调用无效。
func (s *Spec) Release() {
	if s == nil || s.store == nil {
		return
	}
	s.store.release(s.File)
	s.store = nil
}

// Store 保存已加载的字体文件。Spec 持有文件的引用，Sweep 清除没有任何引用的文件。
// Store 可以被多个 goroutine 同时使用。
type Store struct {
	mu    sync.Mutex
	files map[string]*File
}

// NewStore 创建空仓库。
func NewStore() *Store {
	return &Store{files: map[string]*File{}}
}

// NormalizePath 返回字体来源的规范形式：内置字体统一为 "builtin:<小写名>"，文件路径转换为绝对路径。
func NormalizePath(src string) (string, error) {
	if IsBuiltin(src) {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), BuiltinPrefix)
		return BuiltinPrefix + strings.ToLower(name), nil
	}
	if src == "" {
		return "", fmt.Errorf("字体来源为空")
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("解析字体路径 %s 失败: %w", src, err)
	}
	return abs, nil
}

// Acquire 返回 src 对应的文件并增加其引用计数，首次使用时加载。
func (s *Store) Acquire(src string) (*File, error) {
	path, err := NormalizePath(src)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[path]; ok {
		f.refs++
		return f, nil
	}
	data, err := Load(path)
	if err != nil {
		return nil, err
	}
	f := &File{Path: path, Data: data, refs: 1}
	s.files[path] = f
	return f, nil
}

// Spec 创建引用 src 的字体用途。
func (s *Store) Spec(name, src string, sizePt float64) (*Spec, error) {
	f, err := s.Acquire(src)
	if err != nil {
		return nil, fmt.Errorf("字体 %s: %w", name, err)
	}
	return &Spec{Name: name, Size: sizePt, File: f, store: s}, nil
}

// Release 归还一次 Acquire 得到的引用。
func (s *Store) Release(f *File) {
	s.release(f)
}

func (s *Store) release(f *File) {
	if f == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.refs > 0 {
		f.refs--
	}
}

// Sweep 删除引用计数为 0 的文件，返回删除的数量。
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for path, f := range s.files {
		if f.refs == 0 {
			delete(s.files, path)
			n++
		}
	}
	return n
}

// Paths 返回当前保存的文件路径（已排序）。
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Refs 返回文件当前的引用计数，未保存时为 0。
func (s *Store) Refs(src string) int {
	path, err := NormalizePath(src)
	if err != nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[path]; ok {
		return f.refs
	}
	return 0
}
