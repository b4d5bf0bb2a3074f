package dashboard

import (
	"fmt"
	"net/http"
)

// pageHandler serves the single-page operator UI. Everything is inline so the
// binary stays self-contained; the page talks to the /v1 API and the status
// feed over websocket.
func (d *Dashboard) pageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, dashboardPage)
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ClusterView</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            margin: 0;
            padding: 20px;
            min-height: 100vh;
        }
        .container {
            background: white;
            border-radius: 16px;
            box-shadow: 0 20px 60px rgba(0, 0, 0, 0.1);
            padding: 30px;
            max-width: 960px;
            margin: 0 auto 20px auto;
        }
        .logo {
            font-size: 28px;
            font-weight: bold;
            color: #667eea;
        }
        .subtitle {
            color: #666;
            margin-bottom: 10px;
        }
        .banner {
            border-radius: 8px;
            padding: 12px 16px;
            margin: 16px 0;
            font-weight: 600;
        }
        .banner.up { background: #c6f6d5; color: #2f855a; }
        .banner.down { background: #fed7d7; color: #e53e3e; }
        .banner.unknown { background: #edf2f7; color: #4a5568; }
        h2 {
            color: #4a5568;
            border-bottom: 2px solid #edf2f7;
            padding-bottom: 8px;
        }
        button {
            background: #667eea;
            color: white;
            border: none;
            border-radius: 8px;
            padding: 10px 18px;
            font-size: 14px;
            font-weight: 600;
            cursor: pointer;
            margin: 4px;
        }
        button:hover { background: #5a67d8; }
        button.danger { background: #e53e3e; }
        button.danger:hover { background: #c53030; }
        button.small { padding: 5px 10px; font-size: 12px; }
        input[type=text] {
            border: 1px solid #cbd5e0;
            border-radius: 8px;
            padding: 10px;
            font-size: 14px;
            width: 60%;
        }
        table { border-collapse: collapse; width: 100%; }
        th, td {
            text-align: left;
            padding: 8px 10px;
            border-bottom: 1px solid #edf2f7;
            font-size: 13px;
        }
        th { color: #718096; }
        td.cid { font-family: monospace; word-break: break-all; }
        .muted { color: #a0aec0; }
        .error {
            background: #fed7d7;
            color: #e53e3e;
            padding: 12px;
            border-radius: 8px;
            margin: 12px 0;
            display: none;
        }
        .success {
            background: #c6f6d5;
            color: #2f855a;
            padding: 12px;
            border-radius: 8px;
            margin: 12px 0;
            display: none;
        }
        pre.viewer {
            background: #f7fafc;
            border: 1px solid #edf2f7;
            border-radius: 8px;
            padding: 16px;
            overflow: auto;
            max-height: 480px;
            white-space: pre-wrap;
        }
        img.viewer { max-width: 100%; border-radius: 8px; }
        iframe.viewer { width: 100%; height: 540px; border: 1px solid #edf2f7; border-radius: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">ClusterView</div>
        <div class="subtitle">IPFS cluster operator dashboard</div>
        <div id="banner" class="banner unknown">Connecting to cluster...</div>
    </div>

    <div class="container">
        <h2>Upload &amp; Pin</h2>
        <input type="file" id="file">
        <button onclick="upload()">Upload</button>
        <div id="upload-success" class="success"></div>
        <div id="upload-error" class="error"></div>
    </div>

    <div class="container">
        <h2>Pinned Objects</h2>
        <button onclick="refreshPins()">Refresh</button>
        <button class="danger" onclick="runGC()">Run Garbage Collection</button>
        <div id="gc-result" class="success"></div>
        <div id="pins-error" class="error"></div>
        <table>
            <thead>
                <tr><th>CID</th><th>Pin</th><th>Codec</th><th>Hash</th><th></th></tr>
            </thead>
            <tbody id="pins"></tbody>
        </table>
    </div>

    <div class="container">
        <h2>View Content</h2>
        <input type="text" id="cid" placeholder="CID">
        <button onclick="view()">Fetch</button>
        <button onclick="download()">Download</button>
        <div id="view-error" class="error"></div>
        <div id="view-meta" class="muted"></div>
        <div id="viewer"></div>
    </div>

    <script>
        var banner = document.getElementById('banner');

        function show(id, msg) {
            var el = document.getElementById(id);
            el.textContent = msg;
            el.style.display = 'block';
        }
        function hide(id) { document.getElementById(id).style.display = 'none'; }

        function renderStatus(st) {
            if (st.reachable) {
                banner.className = 'banner up';
                banner.textContent = 'Cluster reachable - ' + st.pin_count + ' pinned object(s) - ' + st.api_url;
            } else {
                banner.className = 'banner down';
                banner.textContent = 'Cluster unreachable: ' + (st.error || 'unknown error');
            }
        }

        function connectFeed() {
            var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            var ws = new WebSocket(scheme + location.host + '/v1/ws/status?interval=5');
            ws.onmessage = function (ev) {
                var frame = JSON.parse(ev.data);
                if (frame.type === 'status') { renderStatus(frame.status); }
            };
            ws.onclose = function () {
                banner.className = 'banner unknown';
                banner.textContent = 'Status feed disconnected, retrying...';
                setTimeout(connectFeed, 5000);
            };
        }

        function apiError(res, fallback) {
            return res.json().then(function (body) {
                return (body && (body.message || body.error)) || fallback;
            }, function () { return fallback; });
        }

        function refreshPins() {
            hide('pins-error');
            fetch('/v1/pins').then(function (res) {
                if (!res.ok) {
                    return apiError(res, 'pin listing failed').then(function (msg) { throw new Error(msg); });
                }
                return res.json();
            }).then(function (body) {
                var rows = document.getElementById('pins');
                rows.innerHTML = '';
                body.pins.forEach(function (p) {
                    var tr = document.createElement('tr');
                    var codec = p.valid ? (p.codec + ' v' + p.version) : 'unparseable';
                    tr.innerHTML = '<td class="cid">' + p.cid + '</td>' +
                        '<td>' + (p.type || '') + '</td>' +
                        '<td>' + codec + '</td>' +
                        '<td>' + (p.multihash || '') + '</td>';
                    var td = document.createElement('td');
                    var viewBtn = document.createElement('button');
                    viewBtn.className = 'small';
                    viewBtn.textContent = 'View';
                    viewBtn.onclick = function () {
                        document.getElementById('cid').value = p.cid;
                        view();
                    };
                    var rmBtn = document.createElement('button');
                    rmBtn.className = 'small danger';
                    rmBtn.textContent = 'Unpin';
                    rmBtn.onclick = function () { unpin(p.cid); };
                    td.appendChild(viewBtn);
                    td.appendChild(rmBtn);
                    tr.appendChild(td);
                    rows.appendChild(tr);
                });
            }).catch(function (err) {
                show('pins-error', err.message);
            });
        }

        function upload() {
            hide('upload-success');
            hide('upload-error');
            var input = document.getElementById('file');
            if (!input.files.length) {
                show('upload-error', 'Choose a file first.');
                return;
            }
            var form = new FormData();
            form.append('file', input.files[0]);
            fetch('/v1/pins', { method: 'POST', body: form }).then(function (res) {
                if (!res.ok) {
                    return apiError(res, 'upload failed').then(function (msg) { throw new Error(msg); });
                }
                return res.json();
            }).then(function (body) {
                show('upload-success', 'Pinned ' + body.name + ' as ' + body.cid + ' (' + body.size + ' bytes)');
                refreshPins();
            }).catch(function (err) {
                show('upload-error', err.message);
            });
        }

        function unpin(cid) {
            fetch('/v1/pins/' + encodeURIComponent(cid), { method: 'DELETE' }).then(function (res) {
                if (!res.ok) {
                    return apiError(res, 'unpin failed').then(function (msg) { throw new Error(msg); });
                }
                refreshPins();
            }).catch(function (err) {
                show('pins-error', err.message);
            });
        }

        function runGC() {
            hide('gc-result');
            fetch('/v1/gc', { method: 'POST' }).then(function (res) {
                if (!res.ok) {
                    return apiError(res, 'garbage collection failed').then(function (msg) { throw new Error(msg); });
                }
                return res.json();
            }).then(function (body) {
                show('gc-result', body.message || ('Collected ' + body.count + ' block(s)'));
                refreshPins();
            }).catch(function (err) {
                show('pins-error', err.message);
            });
        }

        function dispositionFilename(res) {
            var cd = res.headers.get('Content-Disposition') || '';
            var m = cd.match(/filename="?([^";]+)"?/);
            return m ? m[1] : 'object';
        }

        function view() {
            hide('view-error');
            var cid = document.getElementById('cid').value.trim();
            var viewer = document.getElementById('viewer');
            var meta = document.getElementById('view-meta');
            viewer.innerHTML = '';
            meta.textContent = '';
            if (!cid) {
                show('view-error', 'Enter a CID first.');
                return;
            }
            fetch('/v1/objects/' + encodeURIComponent(cid)).then(function (res) {
                if (!res.ok) {
                    return apiError(res, 'fetch failed').then(function (msg) { throw new Error(msg); });
                }
                var channel = res.headers.get('X-Clusterview-Channel');
                var filename = dispositionFilename(res);
                var contentType = res.headers.get('Content-Type');
                meta.textContent = filename + ' - ' + contentType + ' - ' + channel + ' channel';
                if (channel === 'text') {
                    return res.text().then(function (text) {
                        var pre = document.createElement('pre');
                        pre.className = 'viewer';
                        pre.textContent = text;
                        viewer.appendChild(pre);
                    });
                }
                return res.blob().then(function (blob) {
                    var url = URL.createObjectURL(blob);
                    if (channel === 'image') {
                        var img = document.createElement('img');
                        img.className = 'viewer';
                        img.src = url;
                        img.alt = filename;
                        viewer.appendChild(img);
                    } else if (channel === 'pdf') {
                        var frame = document.createElement('iframe');
                        frame.className = 'viewer';
                        frame.src = url;
                        viewer.appendChild(frame);
                    } else {
                        var a = document.createElement('a');
                        a.href = url;
                        a.download = filename;
                        a.click();
                        meta.textContent = 'Downloaded ' + filename + ' (' + blob.size + ' bytes, ' + contentType + ')';
                    }
                });
            }).catch(function (err) {
                show('view-error', err.message);
            });
        }

        function download() {
            var cid = document.getElementById('cid').value.trim();
            if (!cid) {
                show('view-error', 'Enter a CID first.');
                return;
            }
            window.location = '/v1/objects/' + encodeURIComponent(cid) + '?download=true';
        }

        connectFeed();
        refreshPins();
        fetch('/v1/status').then(function (res) { return res.json(); }).then(renderStatus);
    </script>
</body>
</html>
`
