package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slate/board"
)

func TestImportRejectsMissingKeys(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing viewport", `{"nodes":[],"edges":[]}`},
		{"missing edges", `{"nodes":[],"viewport":{"x":0,"y":0,"scale":1}}`},
		{"missing nodes", `{"edges":[],"viewport":{"x":0,"y":0,"scale":1}}`},
		{"not json", `not json at all`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Import([]byte(tc.data))
			assert.Error(t, err)
			assert.Nil(t, b, "a rejected import must not return partial data")
		})
	}
}

func TestImportCoercesNonArrayCollections(t *testing.T) {
	data := `{"nodes":"garbage","edges":{"bad":true},"viewport":{"x":5,"y":6,"scale":1.5}}`
	b, err := Import([]byte(data))
	require.NoError(t, err)
	assert.Empty(t, b.Nodes)
	assert.Empty(t, b.Edges)
	assert.Equal(t, board.Viewport{X: 5, Y: 6, Scale: 1.5}, b.Viewport)
}

func TestImportDefaultsMalformedViewport(t *testing.T) {
	data := `{"nodes":[],"edges":[],"viewport":"nope"}`
	b, err := Import([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, board.DefaultViewport(), b.Viewport)

	data = `{"nodes":[],"edges":[],"viewport":{"x":0,"y":0,"scale":99}}`
	b, err = Import([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, board.MaxScale, b.Viewport.Scale, "out-of-range scale clamps")
}

func TestImportSanitizesEdges(t *testing.T) {
	data := `{
		"nodes":[
			{"id":"a","kind":"rectangle","position":{"x":0,"y":0},"size":{"width":120,"height":80}},
			{"id":"b","kind":"ellipse","position":{"x":300,"y":0},"size":{"width":120,"height":80}}
		],
		"edges":[
			{"id":"self","sourceNodeId":"a","targetNodeId":"a"},
			{"id":"dangling","sourceNodeId":"a","targetNodeId":"ghost"},
			{"id":"good","sourceNodeId":"a","targetNodeId":"b"},
			{"id":"dup","sourceNodeId":"b","targetNodeId":"a"}
		],
		"viewport":{"x":0,"y":0,"scale":1}
	}`
	b, err := Import([]byte(data))
	require.NoError(t, err)
	require.Len(t, b.Edges, 1)
	assert.Equal(t, "good", b.Edges[0].ID)
}

func TestImportEnforcesMinSizeAndKind(t *testing.T) {
	data := `{
		"nodes":[{"id":"a","kind":"blob","position":{"x":0,"y":0},"size":{"width":2,"height":3},"strokeWidth":-4}],
		"edges":[],
		"viewport":{"x":0,"y":0,"scale":1}
	}`
	b, err := Import([]byte(data))
	require.NoError(t, err)
	require.Len(t, b.Nodes, 1)
	n := b.Nodes[0]
	assert.Equal(t, board.KindRectangle, n.Kind)
	assert.Equal(t, board.MinNodeSize, n.Size.Width)
	assert.Equal(t, board.MinNodeSize, n.Size.Height)
	assert.Equal(t, 0.0, n.StrokeWidth)
}
