package server

// graphiqlPage is the GraphiQL IDE served on GET requests from browsers.
// It loads the IDE assets from the esm.sh CDN and points it at the
// current endpoint path.
var graphiqlPage = []byte(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>GraphiQL</title>
    <style>
      body { margin: 0; }
      #graphiql { height: 100vh; }
    </style>
    <link rel="stylesheet" href="https://esm.sh/graphiql@4.1.1/dist/style.css" />
    <script type="importmap">
      {
        "imports": {
          "react": "https://esm.sh/react@19.1.0",
          "react/jsx-runtime": "https://esm.sh/react@19.1.0/jsx-runtime",
          "react-dom": "https://esm.sh/react-dom@19.1.0",
          "react-dom/client": "https://esm.sh/react-dom@19.1.0/client",
          "graphiql": "https://esm.sh/graphiql@4.1.1?standalone&external=react,react-dom,@graphiql/react",
          "@graphiql/react": "https://esm.sh/@graphiql/react@0.35.4?standalone&external=react,react-dom",
          "@graphiql/toolkit": "https://esm.sh/@graphiql/toolkit@0.11.3?standalone&external=graphql"
        }
      }
    </script>
  </head>
  <body>
    <div id="graphiql">Loading GraphiQL...</div>
    <script type="module">
      import React from 'react';
      import ReactDOM from 'react-dom/client';
      import { GraphiQL } from 'graphiql';
      import { createGraphiQLFetcher } from '@graphiql/toolkit';

      const fetcher = createGraphiQLFetcher({ url: window.location.pathname });
      ReactDOM.createRoot(document.getElementById('graphiql')).render(
        React.createElement(GraphiQL, { fetcher })
      );
    </script>
  </body>
</html>
`)
