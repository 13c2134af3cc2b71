package epub

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Book is the in-memory aggregate produced either by reading an existing
// EPUB or by assembling one from a source tree. Unlike Reader, a Book holds
// no open file handle and no original ZIP to diff against: WriteNewEPUB
// always serializes it from scratch rather than patching an archive in
// place, which is what Reader.Save is for.
type Book struct {
	Package    *Package
	Navigation *Navigation

	// Resources maps ZIP-relative paths to raw bytes for every manifest
	// item. The OPF and container.xml are not included; those are
	// synthesized at write time from Package/Navigation.
	Resources map[string][]byte

	// OpfPath is the ZIP-relative path new resources are resolved against.
	OpfPath string
}

// NewBookFromReader detaches a Book from an open Reader, loading every
// manifest resource into memory. The extraction pipeline needs random
// access to all chapter/asset bytes at once rather than the
// one-file-at-a-time zip.Reader access Reader.Save uses.
func NewBookFromReader(r *Reader) (*Book, error) {
	b := &Book{
		Package:    r.Package,
		Navigation: r.Navigation,
		OpfPath:    r.OpfPath,
		Resources:  make(map[string][]byte),
	}
	for _, item := range r.Package.Manifest.Items {
		data, err := r.readManifestItem(item)
		if err != nil {
			return nil, fmt.Errorf("%w: reading manifest item %s: %v", ErrIO, item.Href, err)
		}
		b.Resources[resolveOPFRelative(r.OpfPath, item.Href)] = data
	}
	return b, nil
}

// OPFDir returns the ZIP directory containing the OPF file, ending in "/"
// or empty when the OPF sits at the archive root.
func (b *Book) OPFDir() string {
	dir := filepath.Dir(b.OpfPath)
	if dir == "." || dir == "" {
		return ""
	}
	return dir + "/"
}

// DetectOPFDir infers the OPF directory purely from a resource map: prefer
// the directory of whichever key ends in ".opf", falling back to the
// common authoring-tool prefixes. Used by the assembly pipeline, which
// builds Resources before it has decided on an OpfPath.
func DetectOPFDir(resources map[string][]byte) string {
	for key := range resources {
		if strings.HasSuffix(key, ".opf") {
			if idx := strings.LastIndex(key, "/"); idx >= 0 {
				return key[:idx+1]
			}
			return ""
		}
	}
	for _, prefix := range []string{"OEBPS/", "OPS/", "EPUB/", "content/"} {
		for key := range resources {
			if strings.HasPrefix(key, prefix) {
				return prefix
			}
		}
	}
	return ""
}

// Resource returns the bytes for a manifest-relative href, resolving it
// against the OPF directory first and falling back to a suffix match
// against every resource key (mirrors find_resource_key: manifest hrefs
// are OPF-relative but resources are keyed by full ZIP path).
func (b *Book) Resource(href string) ([]byte, bool) {
	if data, ok := b.Resources[resolveOPFRelative(b.OpfPath, href)]; ok {
		return data, true
	}
	if data, ok := b.Resources[href]; ok {
		return data, true
	}
	for key, data := range b.Resources {
		if strings.HasSuffix(key, href) {
			return data, true
		}
	}
	return nil, false
}

const defaultOpfPath = "OEBPS/content.opf"

// WriteNewEPUB serializes a Book from scratch into a brand-new EPUB ZIP at
// outputPath: mimetype first and stored, META-INF/container.xml pointing
// at b.OpfPath (OEBPS/content.opf when unset), the OPF itself, the nav/NCX pair, and every
// resource, then an atomic rename into place.
func WriteNewEPUB(b *Book, outputPath string) error {
	if b.OpfPath == "" {
		b.OpfPath = defaultOpfPath
	}
	b.Package.ensureWriteDefaults(time.Now())

	opfContent, err := b.Package.marshalOPFWithEtree()
	if err != nil {
		return fmt.Errorf("failed to marshal OPF: %w", err)
	}

	nav := b.Navigation
	if nav == nil {
		nav = &Navigation{}
	}
	title := b.Package.GetTitle()
	uid := ""
	if len(b.Package.Metadata.Identifiers) > 0 {
		uid = b.Package.Metadata.Identifiers[0].Value
	}
	opfDir := b.OPFDir()
	navXHTML := RenderNavXHTML(nav, title)
	ncxXML := RenderNCX(nav, title, uid)

	tempDir := filepath.Dir(outputPath)
	if tempDir == "." {
		tempDir = ""
	}
	tmpF, err := os.CreateTemp(tempDir, "epx-assemble-*.epub")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrIO, err)
	}
	tmpPath := tmpF.Name()
	success := false
	defer func() {
		tmpF.Close()
		if !success {
			os.Remove(tmpPath)
		}
	}()

	w := zip.NewWriter(tmpF)
	if err := writeMimetype(w); err != nil {
		return err
	}
	if err := writeZipEntry(w, "META-INF/container.xml", containerXML(b.OpfPath)); err != nil {
		return fmt.Errorf("%w: writing container.xml: %v", ErrIO, err)
	}
	if err := writeZipEntry(w, b.OpfPath, opfContent); err != nil {
		return fmt.Errorf("%w: writing OPF: %v", ErrIO, err)
	}
	if err := writeZipEntry(w, opfDir+tocHref, navXHTML); err != nil {
		return fmt.Errorf("%w: writing nav document: %v", ErrIO, err)
	}
	if err := writeZipEntry(w, opfDir+ncxHref, ncxXML); err != nil {
		return fmt.Errorf("%w: writing ncx document: %v", ErrIO, err)
	}
	for zipPath, data := range b.Resources {
		if zipPath == b.OpfPath || zipPath == opfDir+tocHref || zipPath == opfDir+ncxHref {
			continue
		}
		if err := writeZipEntry(w, zipPath, data); err != nil {
			return fmt.Errorf("%w: writing resource %s: %v", ErrIO, zipPath, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: closing zip writer: %v", ErrIO, err)
	}
	tmpF.Close()

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return fmt.Errorf("%w: renaming temp file: %v", ErrIO, err)
	}
	success = true
	return nil
}

func writeZipEntry(w *zip.Writer, name string, data []byte) error {
	fw, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = fw.Write(data)
	return err
}

func containerXML(opfPath string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="` + opfPath + `" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`)
}
