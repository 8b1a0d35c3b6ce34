package makefile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/assembly/internal/adapters/makefile"
)

func parse(t *testing.T, src string) *makefile.Makefile {
	t.Helper()
	mf, err := makefile.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return mf
}

func TestParse_Fixture(t *testing.T) {
	mf, err := makefile.ParseFile("testdata/simple/Makefile")
	require.NoError(t, err)

	names, recipes := mf.Recipes()
	assert.Equal(t, []string{"all", "simple", "hello", "install", "clean"}, names)
	assert.Equal(t, "all", mf.DefaultGoal)
	assert.Equal(t, []string{"cc  -o simple simple.c"}, recipes["simple"])
	assert.Equal(t, []string{"@echo built simple hello"}, recipes["all"])
	assert.Equal(t, []string{"hello.c", "common.h"}, mf.RuleMap["hello"].Sources)
}

func TestParse_Assignments(t *testing.T) {
	mf := parse(t, `
A = one
B := $(A) two
A = three
C ?= four
C ?= five
D = x
D += y
E ::= $(B)
F != date
export G = exported
`)
	assert.Equal(t, "one two", mf.Vars["B"])
	assert.Equal(t, "three", mf.Vars["A"])
	assert.Equal(t, "four", mf.Vars["C"])
	assert.Equal(t, "x y", mf.Vars["D"])
	assert.Equal(t, "one two", mf.Vars["E"])
	assert.Empty(t, mf.Vars["F"])
	assert.Equal(t, "exported", mf.Vars["G"])
}

func TestParse_RecursiveExpansionInRecipe(t *testing.T) {
	mf := parse(t, "OUT = $(NAME).bin\nbuild:\n\techo $(OUT) ${NAME} $$HOME $(shell date)\nNAME = app\n")
	_, recipes := mf.Recipes()
	assert.Equal(t, []string{"echo app.bin app $HOME $(shell date)"}, recipes["build"])
}

func TestParse_SkipsSpecialPatternAndDirectives(t *testing.T) {
	mf := parse(t, `
.SUFFIXES:
.c.o:
	cc -c $<
%.o: %.c
	cc -c $< -o $@
ifeq ($(OS),Windows_NT)
win:
	echo win
endif
include other.mk
define BLOCK
fake: rule
	echo nope
endef
real: ; echo inline
obj.o: CFLAGS = -O3
`)
	names, recipes := mf.Recipes()
	assert.Equal(t, []string{"win", "real"}, names)
	assert.Equal(t, []string{"echo inline"}, recipes["real"])
	assert.Equal(t, "win", mf.DefaultGoal)
}

func TestParse_DefaultGoalVariable(t *testing.T) {
	mf := parse(t, ".DEFAULT_GOAL := second\nfirst:\n\ttrue\nsecond:\n\ttrue\n")
	assert.Equal(t, "second", mf.DefaultGoal)
}

func TestParse_CommentsAndMultipleTargets(t *testing.T) {
	mf := parse(t, "a b: dep # trailing comment\n\t# recipe comment stays\n\ttouch $@\n\nb:\n")
	names, recipes := mf.Recipes()
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, []string{"# recipe comment stays", "touch a"}, recipes["a"])
	assert.Equal(t, []string{"# recipe comment stays", "touch b"}, recipes["b"])
	assert.Equal(t, []string{"dep"}, mf.RuleMap["a"].Sources)
}
