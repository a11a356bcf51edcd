package server

import "html/template"

type indexData struct {
	SessionID string
}

// Three-column editor: typing in any column translates into the other two
// and syncs every device watching the same session over the websocket.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>triglot</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.columns { display: flex; gap: 1rem; }
.column { flex: 1; }
textarea { width: 100%; height: 14rem; font-size: 1rem; }
h2 { text-transform: capitalize; }
#status { color: #666; margin-top: 1rem; }
</style>
</head>
<body>
<h1>triglot</h1>
<div class="columns">
  <div class="column"><h2>french</h2><textarea id="french"></textarea></div>
  <div class="column"><h2>english</h2><textarea id="english"></textarea></div>
  <div class="column"><h2>polish</h2><textarea id="polish"></textarea></div>
</div>
<p id="status">connecting…</p>
<script>
const sessionID = {{.SessionID}};
const languages = ["french", "english", "polish"];
const status = document.getElementById("status");
let active = null;
let debounce = null;

const proto = location.protocol === "https:" ? "wss:" : "ws:";
const ws = new WebSocket(proto + "//" + location.host + "/sessions/" + sessionID + "/ws");

ws.onopen = () => { status.textContent = "connected (session " + sessionID + ")"; };
ws.onclose = () => { status.textContent = "disconnected"; };
ws.onmessage = (ev) => {
  const state = JSON.parse(ev.data);
  for (const lang of languages) {
    const area = document.getElementById(lang);
    if (document.activeElement !== area) {
      area.value = state.texts[lang];
    }
  }
};

for (const lang of languages) {
  document.getElementById(lang).addEventListener("input", (ev) => {
    active = lang;
    clearTimeout(debounce);
    debounce = setTimeout(() => {
      ws.send(JSON.stringify({language: active, text: ev.target.value}));
    }, 400);
  });
}
</script>
</body>
</html>
`))
