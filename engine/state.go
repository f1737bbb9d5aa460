package engine

import (
	"strings"

	"github.com/hazyhaar/passmed2anki/dom"
)

// Result alerts shown after submission. Only success and danger count
// towards the submission decision; the generic alert role is an export
// fallback.
var (
	successAlerts = []string{"#div_question .alert.alert-success", ".alert.alert-success"}
	dangerAlerts  = []string{"#div_question .alert.alert-danger", ".alert.alert-danger"}
	genericAlerts = []string{"#div_question .alert[role='alert']", ".alert[role='alert']"}
)

const (
	questionRootSelector = "#div_question"
	optionSelector       = "a.list-group-item, label.list-group-item"
	badgeSelector        = "[id^='popularity_badge'], .score-badge"
	submitSelector       = "#submit_answer"
)

var (
	resultStyleMarkers = []string{"greenbar.png", "redbar.png", "solid green", "solid red", "border-left"}
	resultClasses      = []string{"bg-success", "bg-danger", "list-group-item-success", "list-group-item-danger"}

	correctStyleMarkers = []string{"greenbar.png", "solid green"}
	correctClasses      = []string{"bg-success", "list-group-item-success"}
)

// SubmissionState is the fused answer-submitted signal of one pass.
type SubmissionState struct {
	IsChosen           bool
	AnswerNode         dom.Node
	ResultStyledOption bool
	PopularityBadge    bool
	SubmitVisible      bool
}

// DetectSubmission reads the page's post-submission indicators.
//
// The page has no authoritative flag. A visible result alert is required,
// plus at least one of: a result-styled option, a popularity badge, or the
// submit control having disappeared.
func DetectSubmission(doc dom.Document) SubmissionState {
	var st SubmissionState

	st.AnswerNode = FirstVisible(doc, successAlerts)
	if st.AnswerNode == nil {
		st.AnswerNode = FirstVisible(doc, dangerAlerts)
	}

	if root := questionRoot(doc); root != nil {
		for _, opt := range root.QueryAll(optionSelector) {
			if styledAs(opt, resultStyleMarkers, resultClasses) {
				st.ResultStyledOption = true
				break
			}
		}
		st.PopularityBadge = root.Query(badgeSelector) != nil
	}

	st.SubmitVisible = visible(doc.Query(submitSelector))

	st.IsChosen = st.AnswerNode != nil &&
		(st.ResultStyledOption || st.PopularityBadge || !st.SubmitVisible)
	return st
}

func questionRoot(doc dom.Document) dom.Node {
	if n := doc.Query(questionRootSelector); n != nil {
		return n
	}
	return doc.Body()
}

// styledAs reports whether n carries one of the inline style markers or
// one of the classes.
func styledAs(n dom.Node, markers, classes []string) bool {
	style := strings.ToLower(n.Attr("style"))
	for _, m := range markers {
		if strings.Contains(style, m) {
			return true
		}
	}
	for _, c := range classes {
		if n.HasClass(c) {
			return true
		}
	}
	return false
}
