package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ccqa"
	"golang.org/x/net/html"
)

// questionSelector matches elements typed with the Question vocabulary.
const questionSelector = `[itemtype="` + ccqa.QuestionType + `"]`

// FindLanguage returns the lang attribute of the first html element that
// declares one, in document order.
func FindLanguage(doc *goquery.Document) (string, bool) {
	return doc.Find("html[lang]").First().Attr("lang")
}

// FindQuestions returns the outermost Question elements in document order.
// Questions nested inside another Question belong to their ancestor and are
// not returned separately.
func FindQuestions(doc *goquery.Document) []*html.Node {
	return doc.Find(questionSelector).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.ParentsFiltered(questionSelector).Length() == 0
	}).Nodes
}
