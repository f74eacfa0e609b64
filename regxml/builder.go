// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package regxml

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/sandflow/regxmlgo/dict"
	"github.com/sandflow/regxmlgo/klv"
	"github.com/sandflow/regxmlgo/mxf"
)

// NameResolver optionally supplies a human-readable local name for an
// AUID, used only to annotate informative XML comments (e.g. next to an
// ExtendibleEnumeration URN).
type NameResolver interface {
	NameOf(id klv.AUID) (string, bool)
}

// ResolverNames adapts a dict.Resolver into a NameResolver using the
// definition's own symbol.
type ResolverNames struct {
	Resolver dict.Resolver
}

// NameOf implements NameResolver.
func (n ResolverNames) NameOf(id klv.AUID) (string, bool) {
	d, ok := n.Resolver.ByID(id)
	if !ok {
		return "", false
	}
	return d.Symbol, true
}

// Builder implements the type-directed RegXML fragment builder: Rule 3
// (Group -> Element), Rule 4 (property value dispatch) and Rule 5
// (type-directed emission).
type Builder struct {
	resolver dict.Resolver
	sets     map[klv.UUID]*mxf.TypedSet
	names    NameResolver
	handler  EventHandler

	nsPrefix map[string]string
	nsOrder  []string
}

// NewBuilder returns a Builder drawing class/property/type definitions
// from resolver, strong/weak references from sets, and reporting
// diagnostics to handler (NullEventHandler{} if nil). names is optional
// and only used to annotate informative comments.
func NewBuilder(resolver dict.Resolver, sets map[klv.UUID]*mxf.TypedSet, names NameResolver, handler EventHandler) *Builder {
	if handler == nil {
		handler = NullEventHandler{}
	}
	return &Builder{
		resolver: resolver,
		sets:     sets,
		names:    names,
		handler:  handler,
		nsPrefix: make(map[string]string),
	}
}

// Build runs the fragment builder over root and returns the resulting
// document, with xmlns declarations injected on the root element.
func (b *Builder) Build(root *mxf.TypedSet) (*etree.Document, error) {
	el, err := b.buildGroup(&root.LocalSet.Group, nil)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, Event{
			Code: "UnexpectedDefinition", Severity: SeverityFatal,
			Reason: "root Set's key does not resolve to a Class definition", Where: root.Key.String(),
		}
	}
	doc := etree.NewDocument()
	doc.SetRoot(el)
	b.injectNamespaces(el)
	return doc, nil
}

func (b *Builder) emit(code string, sev Severity, reason, where string) {
	b.handler.HandleEvent(Event{Code: code, Severity: sev, Reason: reason, Where: where})
}

func (b *Builder) addComment(el *etree.Element, text string) {
	el.CreateComment(" " + text + " ")
}

// reportAndComment attaches err (expected to be a regxml Event, but any
// error is accepted) to el as an informative comment, per the §Failure
// semantics policy: traversal-level failures are localized and recorded,
// never fatal.
func (b *Builder) reportAndComment(el *etree.Element, err error) {
	var cte *ErrUnsupportedCharType
	if ev, ok := err.(Event); ok {
		b.handler.HandleEvent(ev)
	} else if errors.As(err, &cte) {
		b.handler.HandleEvent(Event{Code: "UnsupportedCharType", Severity: SeverityError, Reason: err.Error(), Where: cte.ID.String()})
	} else {
		b.handler.HandleEvent(Event{Code: "IOError", Severity: SeverityError, Reason: err.Error()})
	}
	b.addComment(el, err.Error())
}

// ensurePrefix assigns namespace the next unused "rN" prefix on first use.
func (b *Builder) ensurePrefix(namespace string) string {
	if p, ok := b.nsPrefix[namespace]; ok {
		return p
	}
	p := fmt.Sprintf("r%d", len(b.nsOrder))
	b.nsPrefix[namespace] = p
	b.nsOrder = append(b.nsOrder, namespace)
	return p
}

// newElement creates an element named localName in namespace, prefixed
// per the builder's lazily assigned namespace->prefix map.
func (b *Builder) newElement(namespace, localName string) *etree.Element {
	prefix := b.ensurePrefix(namespace)
	el := etree.NewElement(localName)
	el.Space = prefix
	return el
}

// injectNamespaces writes one xmlns declaration per registered namespace
// onto the document root, plus the fixed RegXML namespace used for the
// uid/actualType attributes.
func (b *Builder) injectNamespaces(root *etree.Element) {
	for _, ns := range b.nsOrder {
		prefix := b.nsPrefix[ns]
		root.CreateAttr("xmlns:"+prefix, ns)
	}
	root.CreateAttr("xmlns:reg", RegXMLNamespace)
}

// resolveGroupElement implements the element-creation half of Rule 3:
// resolve the Group's key to a ClassDefinition and create the (still
// empty) element named after it, without populating any children. Split
// out of buildGroup so a StrongReference that turns out to be circular
// can still append this stand-in element to its parent before the
// ancestor-chain check aborts further recursion, matching the original
// applyRule3's append-then-check sequencing.
func (b *Builder) resolveGroupElement(g *klv.Group) (*etree.Element, *dict.Definition, bool) {
	classDef, ok := b.resolver.ByID(g.Key)
	if !ok {
		b.emit("UnknownGroup", SeverityInfo, "no definition for group key", g.Key.String())
		return nil, nil, false
	}
	if classDef.Kind != dict.KindClass {
		b.emit("UnexpectedDefinition", SeverityError, "expected a Class Definition", g.Key.String())
		return nil, nil, false
	}
	if g.Key.IsUL() && g.Key.AsUL()[7] != classDef.Identification[7] {
		b.emit("VersionByteMismatch", SeverityInfo,
			fmt.Sprintf("group UL %s in file does not match register version byte", g.Key), classDef.Symbol)
	}
	return b.newElement(classDef.Namespace, classDef.Symbol), classDef, true
}

// buildGroup implements Rule 3: Group -> Element. ancestors carries the
// Instance UID of every enclosing class element, in outside-in order;
// Rule 5.13 (StrongReference, via appendStrongReference) consults it before
// populating a referenced Set's element, so that a cycle is broken at the
// reference that would re-enter an element already under construction
// rather than after the fact.
func (b *Builder) buildGroup(g *klv.Group, ancestors []string) (*etree.Element, error) {
	el, classDef, ok := b.resolveGroupElement(g)
	if !ok {
		return nil, nil
	}
	if err := b.populateGroup(el, g, classDef, ancestors); err != nil {
		return nil, err
	}
	return el, nil
}

// populateGroup fills in el (already created by resolveGroupElement) with
// one child per item of g, per the body of Rule 3.
func (b *Builder) populateGroup(el *etree.Element, g *klv.Group, classDef *dict.Definition, ancestors []string) error {
	childAncestors := ancestors
	if uid, ok := g.InstanceUID(); ok {
		childAncestors = append(append([]string(nil), ancestors...), uid.String())
	}

	for _, item := range g.Items {
		propDef, ok := b.resolver.ByID(item.Key)
		if !ok {
			b.emit("UnknownProperty", SeverityInfo, "no definition for property", "Group "+g.Key.String())
			b.addComment(el, fmt.Sprintf("Unknown property\nKey: %s", item.Key))
			continue
		}
		if propDef.Kind != dict.KindProperty && propDef.Kind != dict.KindPropertyAlias {
			b.emit("UnexpectedDefinition", SeverityWarn, "expected a Property Definition", "Group "+g.Key.String())
			b.addComment(el, fmt.Sprintf("expected Property, found %v", propDef.Kind))
			continue
		}
		if item.Key.IsUL() && item.Key.AsUL()[7] != propDef.Identification[7] {
			b.emit("VersionByteMismatch", SeverityInfo,
				fmt.Sprintf("property UL %s in file does not match register version byte", item.Key), "Group "+g.Key.String())
		}

		child := b.newElement(propDef.Namespace, propDef.Symbol)
		el.AddChild(child)

		if err := b.applyRule4(child, propDef, item.Value, childAncestors); err != nil {
			b.reportAndComment(child, err)
		}

		if propDef.IsUniqueIdentifier {
			el.CreateAttr("reg:"+uidAttr, child.Text())
		}
	}
	return nil
}
