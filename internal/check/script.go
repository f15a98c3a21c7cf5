package check

// Action is what a script step does.
type Action string

const (
	ActionNavigate      Action = "navigate"
	ActionWaitReady     Action = "wait_ready"
	ActionExpectVisible Action = "expect_visible"
	ActionClick         Action = "click"
	ActionScreenshot    Action = "screenshot"
)

// Texts the application under test must render.
const (
	TextActivitiesEN = "Activities"
	TextActivitiesTR = "Etkinlikler"
	TextSelectorEN   = "en"
	TextOptionTR     = "Türkçe"
)

// Screenshot names, in capture order.
const (
	ScreenshotEN       = "1_en_state.png"
	ScreenshotDropdown = "2_dropdown_open.png"
	ScreenshotTR       = "3_tr_state.png"
)

// Step is one entry of the interaction script.
type Step struct {
	Name       string
	Action     Action
	Text       string // exact text for wait, expect and click steps
	Screenshot string // file name for screenshot steps
}

// LanguageSwitchScript is the fixed English to Turkish check. Steps run in
// order and the first failure stops the script.
var LanguageSwitchScript = []Step{
	{Name: "navigate", Action: ActionNavigate},
	{Name: "wait_ready", Action: ActionWaitReady, Text: TextActivitiesEN},
	{Name: "assert_en", Action: ActionExpectVisible, Text: TextActivitiesEN},
	{Name: "screenshot_en", Action: ActionScreenshot, Screenshot: ScreenshotEN},
	{Name: "open_selector", Action: ActionClick, Text: TextSelectorEN},
	{Name: "screenshot_dropdown", Action: ActionScreenshot, Screenshot: ScreenshotDropdown},
	{Name: "select_tr", Action: ActionClick, Text: TextOptionTR},
	{Name: "assert_tr", Action: ActionExpectVisible, Text: TextActivitiesTR},
	{Name: "screenshot_tr", Action: ActionScreenshot, Screenshot: ScreenshotTR},
}
