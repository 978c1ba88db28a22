package hcx

import (
	"slices"
	"testing"

	"github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

func testHierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	h := hierarchy.New()
	h.AddNode(hierarchy.Node{ID: "Root"})
	h.AddNode(hierarchy.Node{ID: "CompA", Members: []string{"BRCA1", "BRCA2"}})
	h.AddNode(hierarchy.Node{ID: "CompB", Members: []string{"TP53"}})
	h.AddEdge(hierarchy.Edge{Parent: "Root", Child: "CompA"})
	h.AddEdge(hierarchy.Edge{Parent: "Root", Child: "CompB"})
	return h
}

func testNetwork() *interactome.Network {
	net := interactome.New()
	a := net.EnsureNode("BRCA1")
	b := net.EnsureNode("BRCA2")
	c := net.EnsureNode("TP53")
	net.AddEdge(a, b, "physical")
	net.AddEdge(b, c, "physical")
	return net
}

func TestHierarchyRoundTrip(t *testing.T) {
	h := testHierarchy(t)
	h.SetNetworkRef(hierarchy.NetworkRef{Host: "ndexbio.org", UUID: "1234"})

	data, err := EncodeHierarchy(h)
	if err != nil {
		t.Fatalf("EncodeHierarchy() = %v", err)
	}
	back, err := DecodeHierarchy(data)
	if err != nil {
		t.Fatalf("DecodeHierarchy() = %v", err)
	}

	wantIDs, gotIDs := h.NodeIDs(), back.NodeIDs()
	slices.Sort(wantIDs)
	slices.Sort(gotIDs)
	if !slices.Equal(gotIDs, wantIDs) {
		t.Fatalf("node IDs = %v, want %v", gotIDs, wantIDs)
	}
	for _, id := range wantIDs {
		if got, want := back.Members(id), h.Members(id); !slices.Equal(got, want) {
			t.Errorf("Members(%s) = %v, want %v", id, got, want)
		}
	}
	if got := back.NetworkRef(); got.UUID != "1234" || got.Host != "ndexbio.org" {
		t.Errorf("NetworkRef = %+v", got)
	}
}

func TestDecodeHierarchy_BadEdgeHandle(t *testing.T) {
	doc := `[{"CXVersion":"2.0"},{"nodes":[{"id":0,"v":{"name":"A"}}]},{"edges":[{"id":0,"s":0,"t":99}]}]`

	_, err := DecodeHierarchy([]byte(doc))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("DecodeHierarchy() = %v, want FORMAT_PARSE", err)
	}
}

func TestInteractomeRoundTrip(t *testing.T) {
	net := testNetwork()

	data, err := EncodeInteractome(net)
	if err != nil {
		t.Fatalf("EncodeInteractome() = %v", err)
	}
	back, err := DecodeInteractome(data)
	if err != nil {
		t.Fatalf("DecodeInteractome() = %v", err)
	}

	if back.NodeCount() != net.NodeCount() || back.EdgeCount() != net.EdgeCount() {
		t.Errorf("round-trip: %d/%d nodes, %d/%d edges",
			back.NodeCount(), net.NodeCount(), back.EdgeCount(), net.EdgeCount())
	}
	if got := back.Edges()[0].Type; got != "physical" {
		t.Errorf("edge type = %q, want physical", got)
	}
}

func TestAddNetworkAnnotations_Remote(t *testing.T) {
	h := testHierarchy(t)

	err := AddNetworkAnnotations(h, Linkage{Host: "ndexbio.org", UUID: "abcd-1234"})
	if err != nil {
		t.Fatalf("AddNetworkAnnotations() = %v", err)
	}

	ref := h.NetworkRef()
	if !ref.IsRemote() || ref.IsLocal() {
		t.Errorf("NetworkRef = %+v, want remote only", ref)
	}
	if got := h.Attr()[AttrSchema]; got != SchemaVersion {
		t.Errorf("schema attr = %v, want %q", got, SchemaVersion)
	}
}

func TestAddNetworkAnnotations_Local(t *testing.T) {
	h := testHierarchy(t)
	dir := t.TempDir()

	err := AddNetworkAnnotations(h, Linkage{
		Interactome: testNetwork(),
		OutputDir:   dir,
		LocalName:   "parent.cx2",
	})
	if err != nil {
		t.Fatalf("AddNetworkAnnotations() = %v", err)
	}

	ref := h.NetworkRef()
	if !ref.IsLocal() || ref.IsRemote() {
		t.Errorf("NetworkRef = %+v, want local only", ref)
	}
	if _, err := LoadInteractome(dir + "/parent.cx2"); err != nil {
		t.Errorf("sibling interactome unreadable: %v", err)
	}
}

func TestAddNetworkAnnotations_Ambiguous(t *testing.T) {
	h := testHierarchy(t)

	err := AddNetworkAnnotations(h, Linkage{UUID: "abcd", Interactome: testNetwork()})
	if !errors.Is(err, errors.ErrCodeLinkage) {
		t.Errorf("both forms: err = %v, want LINKAGE_AMBIGUITY", err)
	}

	err = AddNetworkAnnotations(h, Linkage{})
	if !errors.Is(err, errors.ErrCodeLinkage) {
		t.Errorf("neither form: err = %v, want LINKAGE_AMBIGUITY", err)
	}
}

func TestAddMembersAnnotation_FlagsUnknown(t *testing.T) {
	h := hierarchy.New()
	h.AddNode(hierarchy.Node{ID: "Comp", Members: []string{"BRCA1", "NOVEL"}})

	AddMembersAnnotation(h, testNetwork())

	n, _ := h.Node("Comp")
	ids, _ := n.Attr[AttrMembers].([]int)
	if len(ids) != 1 {
		t.Errorf("HCX::members = %v, want 1 resolved ID", ids)
	}
	flagged, _ := n.Attr[AttrFlaggedMembers].([]string)
	if got, want := flagged, []string{"NOVEL"}; !slices.Equal(got, want) {
		t.Errorf("flagged = %v, want %v", got, want)
	}
	// Unknown members stay in the member list.
	if got, want := h.Members("Comp"), []string{"BRCA1", "NOVEL"}; !slices.Equal(got, want) {
		t.Errorf("Members = %v, want %v", got, want)
	}
}

func TestAddIsRootAttribute_Idempotent(t *testing.T) {
	h := testHierarchy(t)
	roots := h.Roots()

	AddIsRootAttribute(h, roots)
	AddIsRootAttribute(h, roots)

	for _, n := range h.Nodes() {
		flag, present := n.Attr[AttrIsRoot]
		if slices.Contains(roots, n.ID) {
			if flag != true {
				t.Errorf("root %s: isRoot = %v, want true", n.ID, flag)
			}
		} else if present {
			// Absence means false: non-roots carry no attribute at all.
			t.Errorf("non-root %s carries isRoot attribute", n.ID)
		}
	}
}
