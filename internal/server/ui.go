package server

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SHL Assessment Recommender</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #222; }
form { display: flex; gap: .5rem; margin-bottom: 1.5rem; }
textarea { flex: 1; min-height: 4rem; padding: .5rem; }
button { padding: .5rem 1.25rem; background: #2d6a4f; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
.assessment-card { border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin-bottom: 1rem; }
.assessment-card h3 { margin: 0 0 .5rem; }
.assessment-detail { margin: .25rem 0; }
.bullet { color: #2d6a4f; margin-right: .25rem; }
.tag { display: inline-block; padding: 0 .5rem; border-radius: 3px; font-size: .85rem; }
.yes { background: #d8f3dc; color: #1b4332; }
.no { background: #ffe5e5; color: #9d0208; }
.error { color: #9d0208; }
</style>
</head>
<body>
<h1>SHL Assessment Recommender</h1>
<form method="get" action="/">
<textarea name="query" placeholder="Describe the role or paste a job description">{{.Query}}</textarea>
<button type="submit">Recommend</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{range $i, $a := .Assessments}}
<div class="assessment-card">
<h3>{{inc $i}}. {{$a.Name}}</h3>
<div class="assessment-detail"><span class="bullet">•</span> <strong>Test Type:</strong> {{$a.TestType}}</div>
{{if $a.KeyFeatures}}<div class="assessment-detail"><span class="bullet">•</span> <strong>Key Features:</strong> {{$a.KeyFeatures}}</div>{{end}}
{{if $a.Description}}<div class="assessment-detail"><span class="bullet">•</span> <strong>Description:</strong> {{$a.Description}}</div>{{end}}
<div class="assessment-detail"><span class="bullet">•</span> <strong>Duration:</strong> {{if $a.DurationText}}{{$a.DurationText}}{{else}}N/A{{end}}</div>
<div class="assessment-detail"><span class="bullet">•</span> <strong>Remote Testing:</strong> <span class="tag {{if eq $a.RemoteTesting "Yes"}}yes{{else}}no{{end}}">{{$a.RemoteTesting}}</span></div>
<div class="assessment-detail"><span class="bullet">•</span> <strong>Adaptive/IRT:</strong> <span class="tag {{if eq $a.Adaptive "Yes"}}yes{{else}}no{{end}}">{{$a.Adaptive}}</span></div>
{{if $a.URL}}<div class="assessment-detail"><span class="bullet">•</span> <a href="{{$a.URL}}" target="_blank" rel="noopener">View assessment</a></div>{{end}}
</div>
{{end}}
{{if .Fallback}}<div class="assessment-card">{{.Fallback}}</div>{{end}}
{{if and .Searched (not .Assessments) (not .Fallback) (not .Error)}}<p>No recommendations found.</p>{{end}}
</body>
</html>
`
