package e2etest

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const formControls = "input, select, textarea"

// FindInputForLabel returns the form control a label refers to, either through its for attribute or by nesting.
// The first label containing labelText wins.
func FindInputForLabel(form *goquery.Selection, labelText string) (*goquery.Selection, error) {
	label := form.Find(fmt.Sprintf("label:contains('%s')", labelText)).First()
	if label.Length() == 0 {
		return nil, fmt.Errorf("label not found: %s", labelText)
	}
	control := label.Find(formControls).First()
	if id, ok := label.Attr("for"); ok {
		control = form.Find(formControls).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.AttrOr("id", "") == id
		}).First()
	}
	if control.Length() == 0 {
		return nil, fmt.Errorf("no form control for label: %s", labelText)
	}
	return control, nil
}

// FindForm returns the form posting to formActionURLPath.
func FindForm(doc *goquery.Document, formActionURLPath string) (*goquery.Selection, error) {
	form := doc.Find(fmt.Sprintf("form[action='%s']", formActionURLPath))
	if form.Length() == 0 {
		return nil, fmt.Errorf("form not found: %s", formActionURLPath)
	}
	return form, nil
}
