package arena_test

import (
	"fmt"
	"runtime/debug"
	"testing"
)

func assert(condition bool, msg string, args ...interface{}) {
	if !condition {
		fmt.Printf(msg, args...)
		fmt.Printf("\n")
		panic("assertion failed")
	}
}

func failOnError(t *testing.T, e error) {
	if e != nil {
		t.Error(e)
		debug.PrintStack()
		t.FailNow()
	}
}

type person struct {
	Name    string
	Age     uint
	Manager *person
}

type stringsSetWithOrder struct {
	set  map[string]struct{}
	list []string
}

func (s *stringsSetWithOrder) addIfUnique(key string) bool {
	if s.set == nil {
		s.set = map[string]struct{}{}
	}
	_, notUnique := s.set[key]
	if notUnique {
		return false
	}
	s.set[key] = struct{}{}
	s.list = append(s.list, key)
	return true
}

// countingBacking wraps another backing and records how many times the arena
// exercises the exactly-once alloc/release contract.
type countingBacking struct {
	target   arenaBacking
	allocs   int
	releases int
}

type arenaBacking interface {
	Alloc(size uintptr, alignment uintptr) ([]byte, error)
	Release(block []byte)
}

func (b *countingBacking) Alloc(size uintptr, alignment uintptr) ([]byte, error) {
	b.allocs++
	return b.target.Alloc(size, alignment)
}

func (b *countingBacking) Release(block []byte) {
	b.releases++
	b.target.Release(block)
}

// failingBacking always refuses to supply a block.
type failingBacking struct {
	err error
}

func (b failingBacking) Alloc(size uintptr, alignment uintptr) ([]byte, error) {
	return nil, b.err
}

func (b failingBacking) Release(block []byte) {}
