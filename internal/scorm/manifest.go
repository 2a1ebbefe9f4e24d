// Package scorm assembles SCORM 2004 content packages: a lesson page, an
// optional assessment page and the imsmanifest.xml that ties them together.
package scorm

import (
	"encoding/xml"
	"fmt"
)

const (
	LessonFile     = "index.html"
	AssessmentFile = "assessment.html"
	ManifestFile   = "imsmanifest.xml"

	LessonResourceID     = "resource1"
	AssessmentResourceID = "resource_assessment"
	lessonItemID         = "item1"
	assessmentItemID     = "item_assessment"
	organizationID       = "org1"

	defaultOrgTitle = "AI Generated Course"
)

// Namespaces used by the manifest.
const (
	nsIMSCP = "http://www.imsglobal.org/xsd/imscp_v1p1"
	nsADLCP = "http://www.adlnet.org/xsd/adlcp_v1p3"
	nsIMSSS = "http://www.imsglobal.org/xsd/imsss"
	nsXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// The prefixed attribute names are written literally; encoding/xml has no
// notion of namespace prefixes on output.
type manifest struct {
	XMLName       xml.Name      `xml:"manifest"`
	Identifier    string        `xml:"identifier,attr"`
	Version       string        `xml:"version,attr"`
	Xmlns         string        `xml:"xmlns,attr"`
	XmlnsADLCP    string        `xml:"xmlns:adlcp,attr"`
	XmlnsIMSSS    string        `xml:"xmlns:imsss,attr"`
	XmlnsXSI      string        `xml:"xmlns:xsi,attr"`
	Metadata      metadata      `xml:"metadata"`
	Organizations organizations `xml:"organizations"`
	Resources     []resource    `xml:"resources>resource"`
}

type metadata struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
}

type organizations struct {
	Default       string         `xml:"default,attr"`
	Organizations []organization `xml:"organization"`
}

type organization struct {
	Identifier string `xml:"identifier,attr"`
	Title      string `xml:"title"`
	Items      []item `xml:"item"`
}

type item struct {
	Identifier    string `xml:"identifier,attr"`
	IdentifierRef string `xml:"identifierref,attr"`
	IsVisible     bool   `xml:"isvisible,attr"`
	Title         string `xml:"title"`
}

type resource struct {
	Identifier string `xml:"identifier,attr"`
	Type       string `xml:"type,attr"`
	ScormType  string `xml:"adlcp:scormType,attr"`
	Href       string `xml:"href,attr"`
	Files      []file `xml:"file"`
}

type file struct {
	Href string `xml:"href,attr"`
}

// BuildManifest renders imsmanifest.xml for a package. The lesson item and
// resource are always present; the assessment pair only when withAssessment.
func BuildManifest(courseID, title string, withAssessment bool) ([]byte, error) {
	if title == "" {
		title = defaultOrgTitle
	}

	org := organization{
		Identifier: organizationID,
		Title:      title,
		Items: []item{{
			Identifier:    lessonItemID,
			IdentifierRef: LessonResourceID,
			IsVisible:     true,
			Title:         "Lesson 1",
		}},
	}
	resources := []resource{webContent(LessonResourceID, LessonFile)}

	if withAssessment {
		org.Items = append(org.Items, item{
			Identifier:    assessmentItemID,
			IdentifierRef: AssessmentResourceID,
			IsVisible:     true,
			Title:         "Final Assessment",
		})
		resources = append(resources, webContent(AssessmentResourceID, AssessmentFile))
	}

	m := manifest{
		Identifier: "com.coursekit." + courseID,
		Version:    "1.0",
		Xmlns:      nsIMSCP,
		XmlnsADLCP: nsADLCP,
		XmlnsIMSSS: nsIMSSS,
		XmlnsXSI:   nsXSI,
		Metadata: metadata{
			Schema:        "ADL SCORM",
			SchemaVersion: "2004 4th Edition",
		},
		Organizations: organizations{
			Default:       organizationID,
			Organizations: []organization{org},
		},
		Resources: resources,
	}

	b, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append([]byte(xml.Header), b...), nil
}

func webContent(id, href string) resource {
	return resource{
		Identifier: id,
		Type:       "webcontent",
		ScormType:  "sco",
		Href:       href,
		Files:      []file{{Href: href}},
	}
}
