package web

// Layout wraps every page. Pages define "title" and "content".
const Layout = `
{{ define "layout" }}
<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<title>{{ template "title" . }} | Society Recruitment</title>
		<style>
			body { font-family: system-ui, sans-serif; margin: 0; background: #f6f7fb; color: #1f2333; }
			main { max-width: 44rem; margin: 2rem auto; background: #fff; padding: 2rem; border-radius: .5rem; }
			.field { margin-bottom: 1.25rem; }
			.field > label { display: block; font-weight: 600; margin-bottom: .4rem; }
			.field input[type=text], .field input[type=email], .field input[type=tel],
			.field input[type=number], .field input[type=password], .field textarea, .field select { width: 100%; padding: .5rem; box-sizing: border-box; }
			.required-mark { color: #c0392b; }
			.notice { padding: .75rem 1rem; border-radius: .35rem; margin-bottom: 1.5rem; }
			.notice.error { background: #fdecea; color: #8a1c12; }
			.notice.info { background: #e8f4fd; color: #0c4a6e; }
			.logo { width: 4rem; height: 4rem; object-fit: cover; border-radius: 50%; }
		</style>
	</head>
	<body>
		{{ template "content" . }}
	</body>
</html>
{{ end }}
`
