package claimreview

import "strings"

// verdict is a credibility value in [-1, 1] and a confidence in [0, 1]
// for a textual fact-checker rating.
type verdict struct {
	value      float64
	confidence float64
}

// exactVerdicts maps cleaned-up alternateName verdicts onto the
// credibility scale. The entries were collected from real ClaimReview
// feeds, which is why they mix languages and the odd site-specific
// phrasing.
var exactVerdicts = map[string]verdict{
	// clearly false
	"false":                     {-1.0, 1.0},
	"inaccurate":                {-1.0, 1.0},
	"falso":                     {-1.0, 1.0},
	"faux":                      {-1.0, 1.0},
	"keliru":                    {-1.0, 1.0},
	"фейк":                      {-1.0, 1.0},
	"not true":                  {-1.0, 1.0},
	"fake":                      {-1.0, 1.0},
	"fake news":                 {-1.0, 1.0},
	"incorrect":                 {-1.0, 1.0},
	"wrong":                     {-1.0, 1.0},
	"misleading/false":          {-1.0, 1.0},
	"pants on fire":             {-1.0, 1.0},
	"pants on fire!":            {-1.0, 1.0},
	"four pinocchios":           {-1.0, 1.0},
	"false and misleading":      {-1.0, 1.0},
	"false , misleading":        {-1.0, 1.0},
	"false, misleading":         {-1.0, 1.0},
	"misleading , false":        {-1.0, 1.0},
	"lie":                       {-1.0, 1.0},
	"yalan":                     {-1.0, 1.0},
	"forgery":                   {-1.0, 1.0},
	"still wrong":               {-1.0, 1.0},
	"claim wrong":               {-1.0, 1.0},
	"not legit (false)":         {-1.0, 1.0},
	"not true (album)":          {-1.0, 1.0},
	"science says not possible": {-1.0, 1.0},

	// mostly false
	"misleading":                         {-0.5, 1.0},
	"exaggerated":                        {-0.5, 1.0},
	"partial error":                      {-0.5, 1.0},
	"error":                              {-0.5, 1.0},
	"mostly false":                       {-0.5, 1.0},
	"three pinocchios":                   {-0.5, 1.0},
	"mainly false":                       {-0.5, 1.0},
	"this is misleading":                 {-0.5, 1.0},
	"sesat":                              {-0.5, 1.0},
	"this is exaggerated":                {-0.5, 1.0},
	"contradicts past remarks":           {-0.5, 1.0},
	"most of it is not true":             {-0.5, 1.0},
	"partially false":                    {-0.5, 1.0},
	"partly false":                       {-0.5, 1.0},
	"distorts the facts":                 {-0.5, 1.0},
	"distortion":                         {-0.5, 1.0},
	"short on truth":                     {-0.5, 1.0},
	"not the official statistic":         {-0.5, 1.0},
	"conspiracy theory":                  {-0.5, 1.0},
	"misinformation / conspiracy theory": {-0.5, 1.0},
	"spins the facts":                    {-0.5, 1.0},
	"false headline":                     {-0.5, 1.0},
	"unlikely":                           {-0.5, 1.0},
	"science doesn't support claim":      {-0.5, 1.0},

	// mixed or unverifiable
	"half true":                   {0.0, 1.0},
	"half-truths":                 {0.0, 1.0},
	"two pinocchios":              {0.0, 1.0},
	"half truth":                  {0.0, 1.0},
	"maybe":                       {0.0, 1.0},
	"not exactly":                 {0.0, 1.0},
	"unproven":                    {0.0, 1.0},
	"unverified":                  {0.0, 1.0},
	"the accuracy is mixed":       {0.0, 1.0},
	"mixed":                       {0.0, 1.0},
	"mixture":                     {0.0, 1.0},
	"other":                       {0.0, 1.0},
	"this lacks evidence":         {0.0, 1.0},
	"not proven":                  {0.0, 1.0},
	"needs more context":          {0.0, 1.0},
	"needs context":               {0.0, 1.0},
	"partial":                     {0.0, 1.0},
	"partially correct":           {0.0, 1.0},
	"no evidence":                 {0.0, 1.0},
	"not the whole story":         {0.0, 1.0},
	"partly true":                 {0.0, 1.0},
	"we may never know":           {0.0, 1.0},
	"partially true , misleading": {0.0, 1.0},
	"partially true":              {0.0, 1.0},
	"true but":                    {0.0, 1.0},
	"misses the mark":             {0.0, 1.0},
	"insufficient evidence":       {0.0, 1.0},
	"this is unproven":            {0.0, 1.0},
	"unsupported":                 {0.0, 1.0},
	"anecdote":                    {0.0, 1.0},
	"in dispute":                  {0.0, 1.0},
	"analysis":                    {0.0, 1.0},
	"lacks solid numbers":         {0.0, 1.0},

	// mostly true
	"one pinocchio":            {0.5, 1.0},
	"mostly true":              {0.5, 1.0},
	"it could":                 {0.5, 1.0},
	"mostly right":             {0.5, 1.0},
	"most legal experts agree": {0.5, 1.0},
	"largely accurate":         {0.5, 1.0},
	"it's complicated":         {0.5, 1.0},
	"semi-correct":             {0.5, 1.0},
	"no sign of bias":          {0.5, 1.0},

	// clearly true
	"true":     {1.0, 1.0},
	"accurate": {1.0, 1.0},
	"genuine":  {1.0, 1.0},
	"correct":  {1.0, 1.0},
	"benar":    {1.0, 1.0},

	// no verdict at all
	"explanatory": {0.0, 0.75},
}

// affixVerdict matches verdicts embedded in longer phrases, like
// "Wrong. The quote is fabricated". Rules are tried in order after the
// exact table misses.
type affixVerdict struct {
	prefix string
	suffix string
	verdict
}

var affixVerdicts = []affixVerdict{
	{prefix: "wrong.", verdict: verdict{-1.0, 1.0}},
	{prefix: "wrong,", verdict: verdict{-1.0, 1.0}},
	{prefix: "wrong -", verdict: verdict{-1.0, 1.0}},
	{prefix: "false -", verdict: verdict{-1.0, 1.0}},
	{prefix: "no, ", verdict: verdict{-1.0, 1.0}},
	{prefix: "no! ", verdict: verdict{-1.0, 1.0}},
	{prefix: "certainly not! ", verdict: verdict{-1.0, 1.0}},
	{suffix: "rating: false", verdict: verdict{-1.0, 1.0}},
	{prefix: "misleading -", verdict: verdict{-0.5, 1.0}},
	{suffix: "rating: false heading", verdict: verdict{-0.5, 1.0}},
	// reachable because only one trailing dot is trimmed, so
	// "claim debunked ." cleans up to "claim debunked "
	{suffix: "debunked ", verdict: verdict{-0.5, 1.0}},
	{prefix: "unsubstantiated.", verdict: verdict{0.0, 1.0}},
	{suffix: "rating: mixture", verdict: verdict{0.0, 1.0}},
	{prefix: "true but ", verdict: verdict{0.5, 1.0}},
	{prefix: "somewhat true ", verdict: verdict{0.5, 1.0}},
	{prefix: "accurate.", verdict: verdict{1.0, 1.0}},
}

// verdictFor looks up a cleaned-up textual verdict. The second return
// is false when the verdict is unknown.
func verdictFor(altName string) (verdict, bool) {
	if v, ok := exactVerdicts[altName]; ok {
		return v, true
	}
	for _, rule := range affixVerdicts {
		if rule.prefix != "" && strings.HasPrefix(altName, rule.prefix) {
			return rule.verdict, true
		}
		if rule.suffix != "" && strings.HasSuffix(altName, rule.suffix) {
			return rule.verdict, true
		}
	}
	return verdict{}, false
}
