// Copyright 2026 Benoit Pereira da Silva
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xpath_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strusgo/analyzer/pkg/xpath"
)

func TestCompileClassification(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(1, "doc/title"))
	require.NoError(t, a.AddExpression(2, "doc/title()"))
	require.NoError(t, a.AddExpression(3, "doc/item/@id"))
	a.Freeze()

	exprs := a.Expressions()
	require.Equal(t, xpath.ClassTag, exprs[0].Class)
	require.Equal(t, xpath.ClassContent, exprs[1].Class)
	require.Equal(t, xpath.ClassAttribute, exprs[2].Class)
	require.Equal(t, "id", exprs[2].AttrName)
}

func TestContextMatchesTagAndContent(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(1, "doc/title"))
	require.NoError(t, a.AddExpression(2, "doc/title()"))
	a.Freeze()

	ctx := xpath.NewContext(a)
	m := ctx.PutOpenTag("doc")
	require.Empty(t, m)
	m = ctx.PutOpenTag("title")
	require.Len(t, m, 1)
	require.Equal(t, 1, m[0].ID)
	require.Equal(t, xpath.EventTagStart, m[0].Event)

	cm := ctx.PutContent("Hello World")
	require.Len(t, cm, 1)
	require.Equal(t, 2, cm[0].ID)
	require.Equal(t, "Hello World", cm[0].Value)

	em := ctx.PutCloseTag()
	require.Len(t, em, 1)
	require.Equal(t, 1, em[0].ID)
	require.Equal(t, xpath.EventTagEnd, em[0].Event)

	require.Empty(t, ctx.PutCloseTag())
}

func TestContextMatchesAttribute(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(7, "doc/item/@id"))
	a.Freeze()

	ctx := xpath.NewContext(a)
	ctx.PutOpenTag("doc")
	ctx.PutOpenTag("item")
	am := ctx.PutAttribute("id", "42")
	require.Len(t, am, 1)
	require.Equal(t, "42", am[0].Value)

	am2 := ctx.PutAttribute("other", "x")
	require.Empty(t, am2)
}

func TestDescendantWildcardMatchesAnyDepth(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(9, "//item"))
	a.Freeze()

	ctx := xpath.NewContext(a)
	ctx.PutOpenTag("doc")
	ctx.PutOpenTag("section")
	m := ctx.PutOpenTag("item")
	require.Len(t, m, 1)
	require.Equal(t, 9, m[0].ID)
}

func TestAttributePredicateGatesTagMatch(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(11, `doc/item[@id="42",@kind="a"]`))
	a.Freeze()

	ctx := xpath.NewContext(a)
	ctx.PutOpenTag("doc")
	require.Empty(t, ctx.PutOpenTag("item"))

	require.Empty(t, ctx.PutAttribute("id", "42"))
	require.Empty(t, ctx.PutAttribute("kind", "b")) // wrong value, clause unsatisfied

	em := ctx.PutCloseTag()
	require.Empty(t, em, "predicate never fully satisfied, so the tag never matches")
}

func TestAttributePredicateFullySatisfied(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(12, `doc/item[@id="42",@kind="a"]`))
	a.Freeze()

	ctx := xpath.NewContext(a)
	ctx.PutOpenTag("doc")
	require.Empty(t, ctx.PutOpenTag("item"))

	require.Empty(t, ctx.PutAttribute("kind", "a"))
	m := ctx.PutAttribute("id", "42")
	require.Len(t, m, 1)
	require.Equal(t, 12, m[0].ID)
	require.Equal(t, xpath.EventTagStart, m[0].Event)

	em := ctx.PutCloseTag()
	require.Len(t, em, 1)
	require.Equal(t, 12, em[0].ID)
}

func TestSubSectionStartAndEnd(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.DefineSubSection(100, 101, "doc/record"))
	a.Freeze()

	ctx := xpath.NewContext(a)
	ctx.PutOpenTag("doc")
	m := ctx.PutOpenTag("record")
	require.Len(t, m, 1)
	require.Equal(t, 100, m[0].ID)

	em := ctx.PutCloseTag()
	require.Len(t, em, 1)
	require.Equal(t, 101, em[0].ID)
}

func TestBadAttributeExpressionNotLast(t *testing.T) {
	a := xpath.New()
	err := a.AddExpression(1, "doc/@id/title")
	require.Error(t, err)
}
